package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ModelTypeLinearRegression is the only model family the trainer supports.
const ModelTypeLinearRegression = "LinearRegression"

var (
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrNotFitted        = errors.New("model not fitted")
	ErrInvalidInput     = errors.New("invalid input")
)

// Regressor maps feature rows to a scalar target.
type Regressor interface {
	Fit(ds *Dataset) error
	Predict(x mat.Matrix) ([]float64, error)
	FeatureNames() []string
	Save(path string) error
}

// ModelSpec is the model section of the training parameters.
type ModelSpec struct {
	Type         string `yaml:"type"`
	FitIntercept *bool  `yaml:"fit_intercept"`
}

// SupportedModel reports whether NewModel can build modelType.
func SupportedModel(modelType string) bool {
	return modelType == ModelTypeLinearRegression
}

// NewModel builds an unfitted regressor. fit_intercept defaults to true.
func NewModel(spec ModelSpec) (Regressor, error) {
	switch spec.Type {
	case ModelTypeLinearRegression:
		fitIntercept := true
		if spec.FitIntercept != nil {
			fitIntercept = *spec.FitIntercept
		}
		return NewLinearRegression(fitIntercept), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, spec.Type)
	}
}
