package processor

import (
	"context"

	"productsapp/pkg/logger"

	"github.com/robfig/cron/v3"
)

// CronScheduler периодически запускает аудит ссылочной целостности
type CronScheduler struct {
	cron    *cron.Cron
	auditor *LinkAuditor
}

func NewCronScheduler(auditor *LinkAuditor) *CronScheduler {
	return &CronScheduler{
		cron:    cron.New(),
		auditor: auditor,
	}
}

func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting link audit scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.auditor.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("Scheduled link audit failed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()

	// Первый проход сразу при старте, не дожидаясь расписания
	if _, err := s.auditor.Run(ctx); err != nil {
		logger.Warn().Err(err).Msg("Initial link audit failed")
	}

	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping link audit scheduler")
	<-s.cron.Stop().Done()
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
