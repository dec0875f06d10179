package task

import (
	"sync"
	"time"
)

// scheduler calls tick at a fixed interval on its own goroutine until
// stopped.
type scheduler struct {
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

func startScheduler(interval time.Duration, tick func()) *scheduler {
	s := &scheduler{
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	go s.run(interval, tick)
	return s
}

func (s *scheduler) run(interval time.Duration, tick func()) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			tick()
		}
	}
}

// stop halts the ticker and waits for the goroutine to exit. No tick runs
// after stop returns. It must not be called from inside tick.
func (s *scheduler) stop() {
	s.once.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
