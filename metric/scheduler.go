package metric

import (
	"log"
	"time"
)

// Scheduler invokes one full pipeline pass at a fixed period from a single
// goroutine, so ticks never overlap. A tick that runs long simply delays the
// next one.
type Scheduler struct {
	engine *Engine
	period time.Duration
	done   chan struct{}
}

func NewScheduler(engine *Engine) *Scheduler {
	return &Scheduler{
		engine: engine,
		period: engine.config.TickPeriod,
		done:   make(chan struct{}),
	}
}

// Run blocks until Stop is called or a tick fails fatally, in which case the
// error is returned.
func (s *Scheduler) Run() error {
	log.Printf("[PIPELINE] Scheduler started (period %v)", s.period)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.engine.Tick(); err != nil {
				log.Printf("[PIPELINE] Fatal tick error: %v", err)
				return err
			}
		case <-s.done:
			log.Printf("[PIPELINE] Scheduler stopped")
			return nil
		}
	}
}

func (s *Scheduler) Stop() {
	close(s.done)
}
