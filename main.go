package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"houseprice/config"
	qhttp "houseprice/http"
	"houseprice/logging"
	"houseprice/ml"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath, envFile string
	cmd := &cobra.Command{
		Use:          "houseprice",
		Short:        "serve house price predictions from a trained model",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, envFile)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&configPath, "config", "c", "config.yaml", "server configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "optional dotenv file with HOUSEPRICE_* overrides")
	return cmd
}

func run(configPath, envFile string) error {
	// 1. Load config
	cfg, err := config.LoadServerConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// 2. Load model artifacts; the server does not start without them
	predictor, err := ml.LoadPredictor(cfg.Model.Path, cfg.Model.ColumnsPath)
	if err != nil {
		logger.Error("failed to load model artifacts",
			zap.String("model", cfg.Model.Path),
			zap.String("columns", cfg.Model.ColumnsPath),
			zap.Error(err))
		return err
	}
	logger.Info("model loaded",
		zap.String("model", cfg.Model.Path),
		zap.Strings("columns", predictor.Columns()),
		zap.Strings("cities", predictor.Cities()))

	var renderer *qhttp.Renderer
	if cfg.HTTP.Debug {
		renderer, err = qhttp.NewDevRenderer(cfg.Templates.Dir, logger)
	} else {
		renderer, err = qhttp.NewRenderer(logger)
	}
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	defer renderer.Close()

	// 3. Start HTTP server
	serverCfg := qhttp.DefaultServerConfig()
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	server := qhttp.NewServer(serverCfg, qhttp.NewHandlers(predictor, renderer, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- err
		}
	}()

	// 4. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
	return nil
}
