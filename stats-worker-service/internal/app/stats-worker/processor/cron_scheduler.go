package processor

import (
	"context"
	"time"

	"storerating/pkg/logger"
	"storerating/stats-worker-service/internal/app/stats-worker/service"

	"github.com/robfig/cron/v3"
)

// CronScheduler запускает снимки статистики по расписанию с секундами
type CronScheduler struct {
	cron        *cron.Cron
	snapshotter service.SnapshotServiceInterface
}

func NewCronScheduler(snapshotter service.SnapshotServiceInterface) *CronScheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)

	return &CronScheduler{
		cron:        c,
		snapshotter: snapshotter,
	}
}

// Start регистрирует задачу и сразу делает первый снимок
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Str("schedule", schedule).Msg("Cron scheduler started")

	s.run(ctx)
	return nil
}

func (s *CronScheduler) run(ctx context.Context) {
	if err := s.snapshotter.Snapshot(ctx); err != nil {
		logger.Error().Err(err).Msg("Rating snapshot failed")
	}
}

func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}

// Interval возвращает промежуток между двумя ближайшими запусками задачи.
// До Start возвращает 0.
func (s *CronScheduler) Interval() time.Duration {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return 0
	}
	next := entries[0].Schedule.Next(time.Now())
	return entries[0].Schedule.Next(next).Sub(next)
}

// cronLogger пишет сообщения cron в общий zerolog логгер
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
