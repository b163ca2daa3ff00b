package pipeline

import (
	"slices"
	"time"

	"uirunner/pkg/logging"
)

// StageStatus is the outcome of a pipeline stage.
type StageStatus string

const (
	StatusPassed  StageStatus = "passed"
	StatusFailed  StageStatus = "failed"
	StatusSkipped StageStatus = "skipped"
)

// Stage names in execution order.
const (
	StagePreflight       = "preflight"
	StageValidate        = "validate"
	StageWorkspace       = "workspace"
	StageBuildApp        = "build app"
	StageBuildTests      = "build tests"
	StagePrepareConfig   = "prepare config"
	StageStartDriver     = "start driver"
	StageProvisionDevice = "provision device"
	StageRunTests        = "run tests"
	StageReleaseDriver   = "release driver"
)

var stageOrder = []string{
	StagePreflight,
	StageValidate,
	StageWorkspace,
	StageBuildApp,
	StageBuildTests,
	StagePrepareConfig,
	StageStartDriver,
	StageProvisionDevice,
	StageRunTests,
	StageReleaseDriver,
}

// Stage is the recorded outcome of one stage.
type Stage struct {
	// Index is the position of the stage in execution order.
	Index    int
	Name     string
	Status   StageStatus
	Duration time.Duration
	Err      error
}

// Observer is notified as stages start and finish.
type Observer interface {
	StageStarted(name string)
	StageFinished(stage Stage)
}

type nopObserver struct{}

func (nopObserver) StageStarted(string) {}
func (nopObserver) StageFinished(Stage) {}

// tracker times stages and reports them to an observer.
type tracker struct {
	observer Observer
	done     map[string]bool
	stages   []Stage
}

func newTracker(observer Observer) *tracker {
	if observer == nil {
		observer = nopObserver{}
	}
	return &tracker{observer: observer, done: make(map[string]bool)}
}

func (t *tracker) run(name string, fn func() error) error {
	t.observer.StageStarted(name)
	logging.Debug(pipelineSubsystem, "Stage %s started", name)

	start := time.Now()
	err := fn()
	stage := Stage{Name: name, Status: StatusPassed, Duration: time.Since(start), Err: err}
	if err != nil {
		stage.Status = StatusFailed
		logging.Error(pipelineSubsystem, err, "Stage %s failed after %s", name, stage.Duration.Round(time.Millisecond))
	} else {
		logging.Info(pipelineSubsystem, "Stage %s passed in %s", name, stage.Duration.Round(time.Millisecond))
	}

	t.record(stage)
	return err
}

// finish reports every stage that never ran as skipped.
func (t *tracker) finish() {
	for _, name := range stageOrder {
		if !t.done[name] {
			t.record(Stage{Name: name, Status: StatusSkipped})
		}
	}
}

func (t *tracker) record(stage Stage) {
	stage.Index = slices.Index(stageOrder, stage.Name)
	t.done[stage.Name] = true
	t.stages = append(t.stages, stage)
	t.observer.StageFinished(stage)
}
