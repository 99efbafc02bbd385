package svc

import (
	"context"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
	"time"
)

// WatchJobDelay defines the delay between jobs.
const WatchJobDelay = 15 * time.Second

// NewWatcher creates a new instance of the watcher service.
func NewWatcher(jobs []app.WatcherJob, delay time.Duration, clk clock.Clock) Watcher {
	if delay <= 0 {
		delay = WatchJobDelay
	}
	return Watcher{jobs: jobs, delay: delay, clk: clk}
}

// Watcher is a service that runs the sequences of jobs in a loop.
type Watcher struct {
	jobs  []app.WatcherJob
	delay time.Duration
	clk   clock.Clock
}

// Watch runs the watcher until the context is done.
func (s Watcher) Watch(ctx context.Context) {
	var err error
	for {
		for _, j := range s.jobs {
			select {
			case <-ctx.Done():
				return
			case <-s.clk.After(s.delay):
			}
			err = j.Do(ctx)
			if err != nil {
				log.Println(errors.WrapContext(err, errors.Context{
					Path:   "svc.Watcher.Watch",
					Params: errors.Params{"job": j.Name},
				}))
			}
		}
	}
}
