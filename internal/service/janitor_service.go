package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JanitorService periodically sweeps weeks and tags orphaned by event
// mutations that failed before their own cleanup ran.
type JanitorService struct {
	weeks   weekResolver
	tags    tagJanitor
	metrics *MetricsService
	cron    *cron.Cron
	spec    string
	logger  *zap.Logger
}

// NewJanitorService constructs the janitor with a cron spec such as
// "@hourly".
func NewJanitorService(weeks weekResolver, tags tagJanitor, spec string, metrics *MetricsService, logger *zap.Logger) *JanitorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JanitorService{
		weeks:   weeks,
		tags:    tags,
		metrics: metrics,
		cron:    cron.New(),
		spec:    spec,
		logger:  logger,
	}
}

// Start schedules the sweep.
func (s *JanitorService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("janitor started", zap.String("spec", s.spec))
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (s *JanitorService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one orphan collection pass.
func (s *JanitorService) Sweep(ctx context.Context) {
	weeks, err := s.weeks.GarbageCollect(ctx)
	if err != nil {
		s.logger.Error("janitor week sweep failed", zap.Error(err))
	} else {
		s.metrics.ObserveGarbageCollection("weeks", weeks)
	}

	tags, err := s.tags.GarbageCollect(ctx)
	if err != nil {
		s.logger.Error("janitor tag sweep failed", zap.Error(err))
	} else {
		s.metrics.ObserveGarbageCollection("tags", tags)
	}

	if weeks > 0 || tags > 0 {
		s.logger.Info("janitor sweep complete", zap.Int64("weeks", weeks), zap.Int64("tags", tags))
	}
}
