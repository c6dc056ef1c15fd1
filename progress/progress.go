// Package progress defines the optional progress sink used by downloads.
//
// Every method must tolerate being called any number of times. A nil
// Reporter is never passed around; use Nop instead.
package progress

import (
	"sync"

	"github.com/geomagical/geosynth/remote"
)

// Reporter creates one Task per tracked unit of work.
type Reporter interface {
	Task(description string) Task
}

// Task tracks a single unit of work such as one kind's archive.
type Task interface {
	// Start sets the total, or -1 when it is unknown, and starts the clock.
	Start(total int64)
	// SetCompleted sets the absolute amount of work done.
	SetCompleted(n int64)
	// Advance adds n to the amount of work done.
	Advance(n int64)
	// Describe replaces the task description.
	Describe(description string)
	// Stop ends the task, replacing the description when desc is non-empty.
	Stop(desc string)
}

// Nop discards all progress.
var Nop Reporter = nopReporter{}

type nopReporter struct{}

func (nopReporter) Task(string) Task { return nopTask{} }

type nopTask struct{}

func (nopTask) Start(int64)        {}
func (nopTask) SetCompleted(int64) {}
func (nopTask) Advance(int64)      {}
func (nopTask) Describe(string)    {}
func (nopTask) Stop(string)        {}

// Hook adapts a Task to a remote.ReportHook. The first report sets the
// total and starts the task; every report sets the completed byte count to
// blockNum*blockSize, capped at the total when it is known.
func Hook(task Task) remote.ReportHook {
	var once sync.Once

	return func(blockNum, blockSize int, totalSize int64) {
		once.Do(func() { task.Start(totalSize) })

		done := int64(blockNum) * int64(blockSize)
		if totalSize >= 0 && done > totalSize {
			done = totalSize
		}
		task.SetCompleted(done)
	}
}
