package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"houseprice/ml"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParams(t *testing.T) {
	path := writeFile(t, "params.yaml", `data:
  path: data/houses.csv
  features: [area, bedrooms, baths, city]
  target: price
test_size: 0.2
random_state: 42
model:
  type: LinearRegression
  fit_intercept: false
`)

	params, err := LoadParams(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Data.Target != "price" || len(params.Data.Features) != 4 {
		t.Fatalf("unexpected data section: %+v", params.Data)
	}
	if params.RandomState != 42 || params.TestSize != 0.2 {
		t.Fatalf("unexpected split settings: %v %v", params.RandomState, params.TestSize)
	}
	if params.Model.FitIntercept == nil || *params.Model.FitIntercept {
		t.Fatalf("expected fit_intercept false, got %v", params.Model.FitIntercept)
	}
	if params.Output.Model != DefaultModelPath || params.Output.Columns != DefaultColumnsPath || params.Output.Metrics != DefaultMetricsPath {
		t.Fatalf("expected default output paths, got %+v", params.Output)
	}
}

func TestParamsValidate(t *testing.T) {
	valid := func() *Params {
		p := &Params{TestSize: 0.2, Model: ml.ModelSpec{Type: ml.ModelTypeLinearRegression}}
		p.Data.Path = "data.csv"
		p.Data.Features = []string{"area"}
		p.Data.Target = "price"
		return p
	}

	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{name: "missing path", mutate: func(p *Params) { p.Data.Path = "" }},
		{name: "no features", mutate: func(p *Params) { p.Data.Features = nil }},
		{name: "no target", mutate: func(p *Params) { p.Data.Target = "" }},
		{name: "test size zero", mutate: func(p *Params) { p.TestSize = 0 }},
		{name: "test size one", mutate: func(p *Params) { p.TestSize = 1 }},
		{name: "unknown model", mutate: func(p *Params) { p.Model.Type = "SVR" }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid params, got %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid()
			tt.mutate(p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	p := valid()
	p.Model.Type = "SVR"
	if err := p.Validate(); !errors.Is(err, ml.ErrUnsupportedModel) {
		t.Errorf("expected ErrUnsupportedModel, got %v", err)
	}
}

func TestLoadServerConfig(t *testing.T) {
	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 5000 || cfg.Model.Path != DefaultModelPath {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	path := writeFile(t, "config.yaml", `http:
  port: 8081
  read_timeout: 5s
  debug: true
model:
  path: artifacts/model.json
log:
  level: debug
`)
	cfg, err = LoadServerConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8081 || !cfg.HTTP.Debug || cfg.HTTP.ReadTimeout != 5*time.Second {
		t.Errorf("unexpected http section: %+v", cfg.HTTP)
	}
	if cfg.HTTP.WriteTimeout != 15*time.Second {
		t.Errorf("expected default write timeout to survive, got %v", cfg.HTTP.WriteTimeout)
	}
	if cfg.Model.Path != "artifacts/model.json" || cfg.Model.ColumnsPath != DefaultColumnsPath {
		t.Errorf("unexpected model section: %+v", cfg.Model)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("unexpected log level %q", cfg.Log.Level)
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := writeFile(t, ".env", "HOUSEPRICE_COLUMNS_PATH=from-dotenv.json\n")
	t.Setenv("HOUSEPRICE_PORT", "9090")
	t.Setenv("HOUSEPRICE_DEBUG", "true")
	t.Setenv("HOUSEPRICE_MODEL_PATH", "")
	t.Cleanup(func() { os.Unsetenv("HOUSEPRICE_COLUMNS_PATH") })

	cfg := DefaultServerConfig()
	if err := cfg.ApplyEnv(envFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 || !cfg.HTTP.Debug {
		t.Errorf("unexpected http section: %+v", cfg.HTTP)
	}
	if cfg.Model.ColumnsPath != "from-dotenv.json" {
		t.Errorf("expected .env override, got %q", cfg.Model.ColumnsPath)
	}
	if cfg.Model.Path != DefaultModelPath {
		t.Errorf("empty variable must not override, got %q", cfg.Model.Path)
	}

	if err := cfg.ApplyEnv(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}

	t.Setenv("HOUSEPRICE_PORT", "eighty")
	if err := cfg.ApplyEnv(""); err == nil {
		t.Error("expected error for non-numeric port")
	}
}
