package telemetry

import (
	"context"

	"github.com/probelab/probectl/internal/errors"
	"github.com/probelab/probectl/internal/logger"
)

type service struct {
	repo Repository
	cfg  Config
}

type noopCollector struct{}

func NewService(cfg Config) (Collector, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	if !cfg.Enabled {
		logger.Debug().Msg("Telemetry disabled, using no-op collector")
		return &noopCollector{}, nil
	}

	repo, err := NewRepository(cfg)
	if err != nil {
		return nil, err // Already wrapped with appropriate error
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

func (s *service) Record(ctx context.Context, cycle *CycleRecord) error {
	errFactory := errors.New()

	if cycle == nil {
		return errFactory.New(ErrInvalidCycle)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Store(ctx, cycle); err != nil {
			return errFactory.Wrap(ErrCycleRecord, err)
		}
	}

	return nil
}

func (s *service) Close() error {
	errFactory := errors.New()

	if err := s.repo.Close(); err != nil {
		return errFactory.Wrap(ErrServiceShutdown, err)
	}
	return nil
}

func (*noopCollector) Record(_ context.Context, _ *CycleRecord) error {
	return nil
}

func (*noopCollector) Close() error {
	return nil
}
