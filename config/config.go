// Package config loads the trainer parameter file and the predictor service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"houseprice/logging"
	"houseprice/ml"
)

const (
	DefaultModelPath   = "models/model.json"
	DefaultColumnsPath = "models/model_columns.json"
	DefaultMetricsPath = "metrics.json"
)

// Params mirrors params.yaml consumed by the trainer.
type Params struct {
	Data struct {
		Path     string   `yaml:"path"`
		Features []string `yaml:"features"`
		Target   string   `yaml:"target"`
	} `yaml:"data"`
	TestSize    float64      `yaml:"test_size"`
	RandomState int64        `yaml:"random_state"`
	Model       ml.ModelSpec `yaml:"model"`
	Output      struct {
		Model   string `yaml:"model"`
		Columns string `yaml:"columns"`
		Metrics string `yaml:"metrics"`
	} `yaml:"output"`
	Tracking struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"tracking"`
	Log logging.Config `yaml:"log"`
}

// LoadParams reads and validates a params file.
func LoadParams(path string) (*Params, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var params Params
	if err := yaml.NewDecoder(file).Decode(&params); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	params.applyDefaults()
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

func (p *Params) applyDefaults() {
	if p.Output.Model == "" {
		p.Output.Model = DefaultModelPath
	}
	if p.Output.Columns == "" {
		p.Output.Columns = DefaultColumnsPath
	}
	if p.Output.Metrics == "" {
		p.Output.Metrics = DefaultMetricsPath
	}
}

// Validate rejects parameter sets the trainer cannot run with. An unknown
// model type fails here, before any data is read.
func (p *Params) Validate() error {
	if p.Data.Path == "" {
		return errors.New("data.path is required")
	}
	if len(p.Data.Features) == 0 {
		return errors.New("data.features must list at least one column")
	}
	if p.Data.Target == "" {
		return errors.New("data.target is required")
	}
	if p.TestSize <= 0 || p.TestSize >= 1 {
		return fmt.Errorf("test_size must be in (0,1), got %v", p.TestSize)
	}
	if !ml.SupportedModel(p.Model.Type) {
		return fmt.Errorf("%w: %q", ml.ErrUnsupportedModel, p.Model.Type)
	}
	return nil
}

// ServerConfig is the predictor service configuration.
type ServerConfig struct {
	HTTP struct {
		Port         int           `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		Debug        bool          `yaml:"debug"`
	} `yaml:"http"`
	Model struct {
		Path        string `yaml:"path"`
		ColumnsPath string `yaml:"columns_path"`
	} `yaml:"model"`
	Templates struct {
		Dir string `yaml:"dir"`
	} `yaml:"templates"`
	Log logging.Config `yaml:"log"`
}

// DefaultServerConfig returns the configuration used when no file is present.
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.HTTP.Port = 5000
	cfg.HTTP.ReadTimeout = 15 * time.Second
	cfg.HTTP.WriteTimeout = 15 * time.Second
	cfg.Model.Path = DefaultModelPath
	cfg.Model.ColumnsPath = DefaultColumnsPath
	cfg.Templates.Dir = "http/templates"
	cfg.Log.Level = "info"
	return cfg
}

// LoadServerConfig decodes path over the defaults. A missing file is not an
// error; the defaults are returned.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides cfg from the environment, loading envFile first when it exists.
func (cfg *ServerConfig) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if v := os.Getenv("HOUSEPRICE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOUSEPRICE_PORT: %w", err)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv("HOUSEPRICE_MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("HOUSEPRICE_COLUMNS_PATH"); v != "" {
		cfg.Model.ColumnsPath = v
	}
	if v := os.Getenv("HOUSEPRICE_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("HOUSEPRICE_DEBUG: %w", err)
		}
		cfg.HTTP.Debug = debug
	}
	return nil
}
