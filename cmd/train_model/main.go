package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"houseprice/config"
	"houseprice/db"
	"houseprice/logging"
	"houseprice/training"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var paramsPath string
	cmd := &cobra.Command{
		Use:          "train_model",
		Short:        "fit the house price model and write its artifacts",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), paramsPath)
		},
	}
	cmd.Flags().StringVarP(&paramsPath, "params", "p", "params.yaml", "training parameter file")
	return cmd
}

func run(ctx context.Context, paramsPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	params, err := config.LoadParams(paramsPath)
	if err != nil {
		return fmt.Errorf("failed to load params: %w", err)
	}

	logger, err := logging.New(params.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	opts := []training.TrainOptionFunc{training.WithLogger(logger)}
	if params.Tracking.DBPath != "" {
		store, err := db.Open(params.Tracking.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open training log: %w", err)
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("training log unreachable: %w", err)
		}
		opts = append(opts, training.WithLedger(store))
	}

	result, err := training.NewTrainer(params, opts...).Run(ctx)
	if err != nil {
		logger.Error("training failed", zap.Error(err))
		return err
	}

	logger.Info("training complete",
		zap.Int("train_rows", result.TrainRows),
		zap.Int("test_rows", result.TestRows),
		zap.String("model", params.Output.Model),
		zap.String("columns", params.Output.Columns),
		zap.String("metrics", params.Output.Metrics),
	)
	fmt.Printf("mae=%.4f mse=%.4f r2=%.4f\n", result.Metrics.MAE, result.Metrics.MSE, result.Metrics.R2)
	return nil
}
