package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"

	"uirunner/internal/pipeline"
)

func sampleStages() []pipeline.Stage {
	return []pipeline.Stage{
		{Index: 0, Name: pipeline.StagePreflight, Status: pipeline.StatusPassed, Duration: 3 * time.Millisecond},
		{Index: 3, Name: pipeline.StageBuildApp, Status: pipeline.StatusFailed, Duration: 42 * time.Second, Err: errors.New("exit code 1")},
		{Index: 9, Name: pipeline.StageReleaseDriver, Status: pipeline.StatusSkipped},
		{Index: 4, Name: pipeline.StageBuildTests, Status: pipeline.StatusSkipped},
	}
}

func TestProgress_CollectsInExecutionOrder(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, false)

	for _, s := range sampleStages() {
		p.StageStarted(s.Name)
		p.StageFinished(s)
	}

	var names []string
	for _, s := range p.Stages() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		pipeline.StagePreflight,
		pipeline.StageBuildApp,
		pipeline.StageBuildTests,
		pipeline.StageReleaseDriver,
	}, names)
	assert.Empty(t, out.String(), "non-interactive progress writes nothing")
}

func TestProgress_Interactive(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var out bytes.Buffer
	p := NewProgress(&out, true)

	p.StageStarted(pipeline.StagePreflight)
	p.StageFinished(pipeline.Stage{Name: pipeline.StagePreflight, Status: pipeline.StatusPassed, Duration: 1500 * time.Millisecond})
	p.StageStarted(pipeline.StageBuildApp)
	p.StageFinished(pipeline.Stage{Name: pipeline.StageBuildApp, Status: pipeline.StatusFailed})
	p.StageFinished(pipeline.Stage{Name: pipeline.StageRunTests, Status: pipeline.StatusSkipped})

	assert.Contains(t, out.String(), "✓ preflight (1.5s)")
	assert.Contains(t, out.String(), "❌ build app failed")
	assert.NotContains(t, out.String(), "run tests")
}

func TestRenderReport(t *testing.T) {
	text.DisableColors()
	defer text.EnableColors()

	var out bytes.Buffer
	p := NewProgress(&out, false)
	for _, s := range sampleStages() {
		p.StageFinished(s)
	}

	var report bytes.Buffer
	p.Render(&report)
	rendered := report.String()

	assert.Contains(t, rendered, "STAGE")
	assert.Contains(t, rendered, "✅ passed")
	assert.Contains(t, rendered, "❌ failed")
	assert.Contains(t, rendered, "⏭ skipped")
	assert.Contains(t, rendered, "42s")
	assert.Contains(t, rendered, "3ms")
	assert.Contains(t, rendered, "exit code 1")
	assert.Less(t, strings.Index(rendered, "build tests"), strings.Index(rendered, "release driver"))
}

func TestRenderReport_Empty(t *testing.T) {
	var out bytes.Buffer
	RenderReport(&out, nil)
	assert.Empty(t, out.String())
}
