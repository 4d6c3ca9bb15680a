package training

import (
	"context"
	"time"

	"go.uber.org/zap"

	"houseprice/db"
)

// Ledger records finished runs.
type Ledger interface {
	SaveTrainingLog(ctx context.Context, entry db.TrainingLog) error
	LatestTrainingLog(ctx context.Context) (*db.TrainingLog, error)
}

type TrainOptions struct {
	Logger *zap.Logger
	Ledger Ledger
	Now    func() time.Time
}

type TrainOptionFunc func(options *TrainOptions)

func WithLogger(logger *zap.Logger) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.Logger = logger
	}
}

func WithLedger(ledger Ledger) TrainOptionFunc {
	return func(options *TrainOptions) {
		options.Ledger = ledger
	}
}

func NewTrainOptions() *TrainOptions {
	return &TrainOptions{
		Logger: zap.NewNop(),
		Now:    time.Now,
	}
}
