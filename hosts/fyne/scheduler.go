package fyne

import (
	"time"

	"fyne.io/fyne/v2"
)

// Scheduler runs callbacks on the Fyne main goroutine, where widgets are rendered and receive their events.
type Scheduler struct{}

// Now returns the current time.
func (Scheduler) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f on the main goroutine after d.
func (Scheduler) AfterFunc(d time.Duration, f func()) func() bool {
	t := time.AfterFunc(d, func() {
		fyne.Do(f)
	})
	return t.Stop
}

// Post queues f to run on the main goroutine.
func (Scheduler) Post(f func()) {
	fyne.Do(f)
}
