// Package training turns a dataset and a parameter set into the model,
// column layout and metrics artifacts the predictor service consumes.
package training

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"houseprice/config"
	"houseprice/db"
	"houseprice/ml"
	"houseprice/pipeline"
)

// Result describes a finished run.
type Result struct {
	Metrics   ml.Metrics
	Layout    *ml.ColumnLayout
	TrainRows int
	TestRows  int
	Cleaning  pipeline.CleaningStats
	// Previous is the ledger's newest run before this one, if any.
	Previous *db.TrainingLog
}

// Trainer runs the training pipeline for one parameter set.
type Trainer struct {
	params  *config.Params
	options *TrainOptions
}

func NewTrainer(params *config.Params, opts ...TrainOptionFunc) *Trainer {
	options := NewTrainOptions()
	for _, o := range opts {
		o(options)
	}
	return &Trainer{params: params, options: options}
}

// Run loads, cleans, encodes, splits, fits, evaluates and saves. The model
// type is resolved before any data is read.
func (t *Trainer) Run(ctx context.Context) (*Result, error) {
	p := t.params
	logger := t.options.Logger

	model, err := ml.NewModel(p.Model)
	if err != nil {
		return nil, err
	}

	ds, layout, stats, err := t.loadDataset()
	if err != nil {
		return nil, err
	}
	logger.Info("dataset loaded",
		zap.String("path", p.Data.Path),
		zap.Int("rows", ds.Len()),
		zap.Strings("columns", layout.Columns),
		zap.Int64("cells_rewritten", stats.Changed),
		zap.Int64("missing_filled", stats.Rules["missing_value"]),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trainIdx, testIdx, err := ml.TrainTestSplit(ds.Len(), p.TestSize, p.RandomState)
	if err != nil {
		return nil, err
	}
	train, test := ds.Subset(trainIdx), ds.Subset(testIdx)

	if err := model.Fit(train); err != nil {
		return nil, fmt.Errorf("fit model: %w", err)
	}
	preds, err := model.Predict(test.X)
	if err != nil {
		return nil, fmt.Errorf("predict held-out rows: %w", err)
	}
	metrics, err := ml.Evaluate(test.Y, preds)
	if err != nil {
		return nil, err
	}
	logger.Info("model evaluated",
		zap.Float64("mae", metrics.MAE),
		zap.Float64("mse", metrics.MSE),
		zap.Float64("r2", metrics.R2),
	)

	if err := save(p.Output.Metrics, metrics.Save); err != nil {
		return nil, fmt.Errorf("save metrics: %w", err)
	}
	if err := save(p.Output.Model, model.Save); err != nil {
		return nil, fmt.Errorf("save model: %w", err)
	}
	if err := save(p.Output.Columns, layout.Save); err != nil {
		return nil, fmt.Errorf("save column layout: %w", err)
	}

	result := &Result{
		Metrics:   metrics,
		Layout:    layout,
		TrainRows: train.Len(),
		TestRows:  test.Len(),
		Cleaning:  stats,
	}
	if t.options.Ledger != nil {
		if err := t.record(ctx, result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (t *Trainer) loadDataset() (*ml.Dataset, *ml.ColumnLayout, pipeline.CleaningStats, error) {
	p := t.params
	var stats pipeline.CleaningStats

	frame, err := pipeline.ReadCSV(p.Data.Path)
	if err != nil {
		return nil, nil, stats, err
	}
	var absent []string
	for _, name := range append(append([]string(nil), p.Data.Features...), p.Data.Target) {
		if !frame.Has(name) {
			absent = append(absent, name)
		}
	}
	if len(absent) > 0 {
		return nil, nil, stats, fmt.Errorf("%s: columns not found: %s", p.Data.Path, strings.Join(absent, ", "))
	}
	features, err := frame.Select(p.Data.Features...)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("select features: %w", err)
	}
	targetCells, err := frame.Column(p.Data.Target)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("select target: %w", err)
	}

	cleaned, stats := pipeline.NewDefaultCleaner().Clean(features)
	y, err := pipeline.ParseTarget(targetCells)
	if err != nil {
		return nil, nil, stats, err
	}

	enc, err := ml.OneHotEncode(cleaned, true)
	if err != nil {
		return nil, nil, stats, err
	}
	ds, err := ml.NewDataset(enc.Columns, enc.Rows, y)
	if err != nil {
		return nil, nil, stats, err
	}
	return ds, &ml.ColumnLayout{Columns: enc.Columns, Categories: enc.Categories}, stats, nil
}

func (t *Trainer) record(ctx context.Context, result *Result) error {
	previous, err := t.options.Ledger.LatestTrainingLog(ctx)
	if err != nil {
		return fmt.Errorf("read training log: %w", err)
	}
	result.Previous = previous

	entry := db.TrainingLog{
		ModelName: t.params.Model.Type,
		Dataset:   t.params.Data.Path,
		TrainRows: result.TrainRows,
		TestRows:  result.TestRows,
		MAE:       result.Metrics.MAE,
		MSE:       result.Metrics.MSE,
		R2:        result.Metrics.R2,
		TrainedAt: t.options.Now(),
	}
	if err := t.options.Ledger.SaveTrainingLog(ctx, entry); err != nil {
		return fmt.Errorf("write training log: %w", err)
	}
	if previous != nil {
		t.options.Logger.Info("compared with previous run",
			zap.Time("previous_trained_at", previous.TrainedAt),
			zap.Float64("r2_delta", result.Metrics.R2-previous.R2),
			zap.Float64("mae_delta", result.Metrics.MAE-previous.MAE),
		)
	}
	return nil
}

func save(path string, write func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return write(path)
}
