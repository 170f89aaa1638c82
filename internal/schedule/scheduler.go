package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a unit of recurring background work. Run must be safe to call
// repeatedly; overlapping runs of the same job are suppressed here.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

type Scheduler interface {
	AddJob(job Job, spec string) error
	Start(ctx context.Context)
	Stop()
}

type jobEntry struct {
	job     Job
	spec    string
	running atomic.Bool
}

type CronScheduler struct {
	cron    *cron.Cron
	entries []*jobEntry
	ctx     context.Context
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron: cron.New(cron.WithParser(parser)),
		ctx:  context.Background(),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	entry := &jobEntry{job: job, spec: spec}
	if _, err := c.cron.AddFunc(spec, func() { c.fire(entry) }); err != nil {
		logutil.GetLogger(context.Background()).Error("schedule job failed",
			zap.String("job", job.Name()), zap.String("spec", spec), zap.Error(err))
		return err
	}
	c.entries = append(c.entries, entry)
	logutil.GetLogger(context.Background()).Info("job scheduled",
		zap.String("job", job.Name()), zap.String("spec", spec))
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	c.cron.Start()
}

// Stop halts the cron loop and waits for any in-flight job run to return.
func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CronScheduler) fire(entry *jobEntry) {
	logger := logutil.GetLogger(c.ctx).With(
		zap.String("job", entry.job.Name()),
		zap.String("spec", entry.spec),
	)
	if !entry.running.CompareAndSwap(false, true) {
		logger.Info("job skipped: previous run still active")
		return
	}
	defer entry.running.Store(false)

	start := time.Now()
	logger.Info("job started")
	if err := entry.job.Run(c.ctx); err != nil {
		logger.Error("job finished", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	logger.Info("job finished", zap.Duration("duration", time.Since(start)))
}
