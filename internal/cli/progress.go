package cli

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"

	"uirunner/internal/pipeline"
)

// Progress reports stage transitions and collects the stage outcomes.
type Progress struct {
	out         io.Writer
	interactive bool

	mu      sync.Mutex
	spinner *spinner.Spinner
	stages  []pipeline.Stage
}

// NewProgress creates a progress reporter writing to out. Spinners and
// per-stage lines are only shown when interactive is true.
func NewProgress(out io.Writer, interactive bool) *Progress {
	return &Progress{out: out, interactive: interactive}
}

// StageStarted implements pipeline.Observer.
func (p *Progress) StageStarted(name string) {
	if !p.interactive {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopSpinner()
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(p.out))
	s.Suffix = fmt.Sprintf(" %s...", name)
	s.Start()
	p.spinner = s
}

// StageFinished implements pipeline.Observer.
func (p *Progress) StageFinished(stage pipeline.Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stages = append(p.stages, stage)
	if !p.interactive {
		return
	}
	p.stopSpinner()

	switch stage.Status {
	case pipeline.StatusPassed:
		fmt.Fprintf(p.out, "%s %s\n", FormatSuccess(stage.Name), text.FgHiBlack.Sprintf("(%s)", formatDuration(stage.Duration)))
	case pipeline.StatusFailed:
		fmt.Fprintln(p.out, text.FgRed.Sprintf("❌ %s failed", stage.Name))
	}
}

// Stages returns the recorded stages in execution order.
func (p *Progress) Stages() []pipeline.Stage {
	p.mu.Lock()
	defer p.mu.Unlock()

	stages := append([]pipeline.Stage(nil), p.stages...)
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Index < stages[j].Index
	})
	return stages
}

// Render writes the stage report table to w.
func (p *Progress) Render(w io.Writer) {
	RenderReport(w, p.Stages())
}

func (p *Progress) stopSpinner() {
	if p.spinner != nil {
		p.spinner.Stop()
		p.spinner = nil
	}
}
