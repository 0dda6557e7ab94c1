package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	logger := cron.PrintfLogger(log.Default())
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// ScheduleInterval registers a job that runs every interval, rounded down to
// whole seconds.
func (s *Scheduler) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	return s.cron.AddFunc(spec, job)
}

// Sweeper is anything that drops expired state and reports how much it removed.
type Sweeper interface {
	Sweep() int
}

// ScheduleSweep periodically sweeps target and logs non-empty sweeps.
func (s *Scheduler) ScheduleSweep(name string, interval time.Duration, target Sweeper) (cron.EntryID, error) {
	return s.ScheduleInterval(interval, func() {
		if n := target.Sweep(); n > 0 {
			log.Printf("%s: removed %d expired entries", name, n)
		}
	})
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
