package scheduler

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Progress reports completed-task counts at a fixed interval, split by which
// device completed them. Grounded on engine/profiler.Profiler in the
// teacher repository, generalized from frames-per-second to
// tasks-per-second for a batch filtering run.
type Progress struct {
	total        int
	completedCPU atomic.Int64
	completedGPU atomic.Int64

	mu       sync.Mutex // guards lastTime and lastDone
	interval time.Duration
	lastTime time.Time
	lastDone int64
}

// NewProgress creates a reporter for a run of total tasks, logging at the
// given interval (pass 0 for the default of one second).
func NewProgress(total int, interval time.Duration) *Progress {
	if interval <= 0 {
		interval = time.Second
	}
	return &Progress{total: total, interval: interval, lastTime: time.Now()}
}

// MarkCPU records one task completed by a CPU worker and logs progress if
// the interval has elapsed.
func (p *Progress) MarkCPU() { p.completedCPU.Add(1); p.maybeLog() }

// MarkGPU records one task completed by the GPU backend and logs progress if
// the interval has elapsed.
func (p *Progress) MarkGPU() { p.completedGPU.Add(1); p.maybeLog() }

func (p *Progress) maybeLog() {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.interval {
		return
	}

	done := p.completedCPU.Load() + p.completedGPU.Load()
	rate := float64(done-p.lastDone) / elapsed.Seconds()

	log.Printf("[scheduler] %d/%d tasks (cpu: %d, gpu: %d) | %.1f tasks/s",
		done, p.total, p.completedCPU.Load(), p.completedGPU.Load(), rate)

	p.lastTime = now
	p.lastDone = done
}

// Done reports the total number of completed tasks so far.
func (p *Progress) Done() int64 {
	return p.completedCPU.Load() + p.completedGPU.Load()
}
