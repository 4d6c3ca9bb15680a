package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarises regression quality on held-out rows.
type Metrics struct {
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
	R2  float64 `json:"r2"`
}

// Evaluate computes MAE, MSE and R². A constant yTrue gives R² 1 when it is
// predicted exactly and 0 otherwise.
func Evaluate(yTrue, yPred []float64) (Metrics, error) {
	if len(yTrue) == 0 {
		return Metrics{}, errors.New("no samples to evaluate")
	}
	if len(yTrue) != len(yPred) {
		return Metrics{}, errors.New("yTrue and yPred size mismatch")
	}

	n := float64(len(yTrue))
	mean := stat.Mean(yTrue, nil)
	var rss, tss float64
	for i, y := range yTrue {
		rss += (y - yPred[i]) * (y - yPred[i])
		tss += (y - mean) * (y - mean)
	}

	m := Metrics{
		MAE: floats.Distance(yTrue, yPred, 1) / n,
		MSE: rss / n,
	}
	switch {
	case tss != 0:
		m.R2 = 1 - rss/tss
	case rss == 0:
		m.R2 = 1
	default:
		m.R2 = 0
	}
	if math.IsNaN(m.MAE) || math.IsNaN(m.MSE) || math.IsNaN(m.R2) {
		return Metrics{}, errors.New("model produced NaN metrics")
	}
	return m, nil
}

// Save writes the metrics as JSON indented with four spaces.
func (m Metrics) Save(path string) error {
	payload, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
