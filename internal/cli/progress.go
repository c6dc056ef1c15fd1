package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/geomagical/geosynth/progress"
)

// barReporter renders one terminal progress bar at a time. Starting a task
// finishes the bar of the previous one.
type barReporter struct {
	w io.Writer

	mu     sync.Mutex
	active *progressbar.ProgressBar
}

func newBarReporter(w io.Writer) *barReporter {
	return &barReporter{w: w}
}

func (r *barReporter) Task(description string) progress.Task {
	return &barTask{r: r, desc: description}
}

// Println writes a line below the current bar.
func (r *barReporter) Println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishLocked()
	fmt.Fprintln(r.w, line)
}

// Close finishes the active bar.
func (r *barReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishLocked()
}

func (r *barReporter) finishLocked() {
	if r.active == nil {
		return
	}
	if !r.active.IsFinished() {
		_ = r.active.Exit()
		fmt.Fprintln(r.w)
	}
	r.active = nil
}

func (r *barReporter) start(desc string, total int64, bytes bool) *progressbar.ProgressBar {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.finishLocked()
	r.active = progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(bytes),
		progressbar.OptionUseIECUnits(true),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.w) }),
	)

	return r.active
}

type barTask struct {
	r       *barReporter
	desc    string
	bar     *progressbar.ProgressBar
	started int
}

// Start opens a new bar. The first phase of a task counts bytes, later
// phases count archive members.
func (t *barTask) Start(total int64) {
	t.bar = t.r.start(t.desc, total, t.started == 0)
	t.started++
}

func (t *barTask) SetCompleted(n int64) {
	if t.bar != nil {
		_ = t.bar.Set64(n)
	}
}

func (t *barTask) Advance(n int64) {
	if t.bar != nil {
		_ = t.bar.Add64(n)
	}
}

func (t *barTask) Describe(description string) {
	t.desc = description
	if t.bar != nil && !t.bar.IsFinished() {
		t.bar.Describe(description)
	}
}

func (t *barTask) Stop(desc string) {
	if desc != "" {
		t.desc = desc
	}
	t.r.Println(t.desc)
}
