package ml

import (
	"fmt"
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// HouseInput is one parsed prediction request.
type HouseInput struct {
	Area     float64
	Bedrooms int
	Baths    int
	City     string
}

// ParseHouseInput reads the four form fields. A missing field or a value
// that does not convert is an ErrInvalidInput.
func ParseHouseInput(form url.Values) (HouseInput, error) {
	var in HouseInput
	area, err := formValue(form, "area")
	if err != nil {
		return in, err
	}
	if in.Area, err = strconv.ParseFloat(area, 64); err != nil {
		return in, fmt.Errorf("%w: could not convert string to float: %q", ErrInvalidInput, area)
	}
	if in.Bedrooms, err = intField(form, "bedrooms"); err != nil {
		return in, err
	}
	if in.Baths, err = intField(form, "baths"); err != nil {
		return in, err
	}
	if !form.Has(CityColumn) {
		return in, fmt.Errorf("%w: missing field %q", ErrInvalidInput, CityColumn)
	}
	in.City = form.Get(CityColumn)
	return in, nil
}

func formValue(form url.Values, name string) (string, error) {
	if !form.Has(name) {
		return "", fmt.Errorf("%w: missing field %q", ErrInvalidInput, name)
	}
	return strings.TrimSpace(form.Get(name)), nil
}

func intField(form url.Values, name string) (int, error) {
	raw, err := formValue(form, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid literal for int() with base 10: %q", ErrInvalidInput, raw)
	}
	return v, nil
}

// PredictResult is either a price or the error that prevented one.
type PredictResult struct {
	Price float64
	Err   error
}

func (r PredictResult) OK() bool {
	return r.Err == nil
}

// Text renders the price the way the form page shows it. Non-finite prices,
// reachable through inputs such as area=nan, print as nan, inf or -inf.
func (r PredictResult) Text() string {
	return "🏠 Predicted Price: " + formatPrice(r.Price)
}

func formatPrice(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Predictor pairs a fitted model with the layout it was trained on. Both are
// read-only after construction and safe for concurrent use.
type Predictor struct {
	model  Regressor
	layout *ColumnLayout
}

// NewPredictor checks that the model and layout agree on the feature columns.
func NewPredictor(model Regressor, layout *ColumnLayout) (*Predictor, error) {
	if layout == nil || len(layout.Columns) == 0 {
		return nil, fmt.Errorf("%w: empty column layout", ErrInvalidInput)
	}
	if names := model.FeatureNames(); len(names) > 0 && !slices.Equal(names, layout.Columns) {
		return nil, fmt.Errorf("model features %v do not match column layout %v", names, layout.Columns)
	}
	return &Predictor{model: model, layout: layout}, nil
}

// LoadPredictor loads the model and column layout artifacts.
func LoadPredictor(modelPath, layoutPath string) (*Predictor, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	layout, err := LoadColumnLayout(layoutPath)
	if err != nil {
		return nil, fmt.Errorf("load column layout: %w", err)
	}
	return NewPredictor(model, layout)
}

// Cities lists the city names the predictor knows.
func (p *Predictor) Cities() []string {
	return p.layout.CategoriesOf(CityColumn)
}

// Columns is the training column order.
func (p *Predictor) Columns() []string {
	return append([]string(nil), p.layout.Columns...)
}

// Encode expands in into named features with one indicator per known city.
// An unknown city leaves every indicator at 0.
func (p *Predictor) Encode(in HouseInput) map[string]float64 {
	row := map[string]float64{
		"area":     in.Area,
		"bedrooms": float64(in.Bedrooms),
		"baths":    float64(in.Baths),
	}
	for _, city := range p.Cities() {
		v := 0.0
		if in.City == city {
			v = 1
		}
		row[IndicatorName(CityColumn, city)] = v
	}
	return row
}

// PredictInput encodes in, aligns it to the training layout and predicts.
func (p *Predictor) PredictInput(in HouseInput) PredictResult {
	features := Reindex(p.Encode(in), p.layout.Columns)
	preds, err := p.model.Predict(mat.NewDense(1, len(features), features))
	if err != nil {
		return PredictResult{Err: err}
	}
	return PredictResult{Price: preds[0]}
}

// Predict parses a submitted form and predicts its price.
func (p *Predictor) Predict(form url.Values) PredictResult {
	in, err := ParseHouseInput(form)
	if err != nil {
		return PredictResult{Err: err}
	}
	return p.PredictInput(in)
}
