package ml

import (
	"errors"
	"math"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"gotest.tools/v3/assert"
)

var trainedColumns = []string{"area", "bedrooms", "baths", "city_Karachi", "city_Lahore", "city_Rawalpindi"}

func newTestPredictor(t *testing.T) *Predictor {
	t.Helper()
	model := &LinearRegression{
		fitIntercept: true,
		coef:         []float64{100, 5000, 3000, 20000, 40000, 10000},
		intercept:    12345.678,
		features:     trainedColumns,
	}
	layout := &ColumnLayout{
		Columns:    trainedColumns,
		Categories: map[string][]string{CityColumn: {"Islamabad", "Karachi", "Lahore", "Rawalpindi"}},
	}
	p, err := NewPredictor(model, layout)
	assert.NilError(t, err)
	return p
}

func TestPredictorEncodeKnownCities(t *testing.T) {
	p := newTestPredictor(t)
	for _, city := range p.Cities() {
		row := p.Encode(HouseInput{Area: 1000, Bedrooms: 3, Baths: 2, City: city})
		ones := 0
		for _, candidate := range p.Cities() {
			v := row[IndicatorName(CityColumn, candidate)]
			assert.Equal(t, v == 1, candidate == city, "city %s indicator %s = %v", city, candidate, v)
			if v == 1 {
				ones++
			}
		}
		assert.Equal(t, ones, 1)
	}
}

func TestPredictorEncodeUnknownCity(t *testing.T) {
	p := newTestPredictor(t)
	row := p.Encode(HouseInput{Area: 1000, Bedrooms: 3, Baths: 2, City: "Multan"})
	for _, city := range p.Cities() {
		assert.Equal(t, row[IndicatorName(CityColumn, city)], 0.0)
	}

	res := p.PredictInput(HouseInput{Area: 1000, Bedrooms: 3, Baths: 2, City: "Multan"})
	assert.NilError(t, res.Err)
}

func TestPredictorPredict(t *testing.T) {
	p := newTestPredictor(t)
	form := url.Values{"area": {"1000"}, "bedrooms": {"3"}, "baths": {"2"}, "city": {"Lahore"}}

	res := p.Predict(form)
	assert.Assert(t, res.OK(), "unexpected error: %v", res.Err)
	want := 12345.678 + 100*1000 + 5000*3 + 3000*2 + 40000
	assert.Assert(t, approx(res.Price, want), "price = %v", res.Price)
	assert.Assert(t, regexp.MustCompile(`Predicted Price: -?\d+\.\d{2}$`).MatchString(res.Text()), res.Text())
	assert.Equal(t, res.Text(), "🏠 Predicted Price: 173345.68")

	// the reference city contributes nothing beyond the intercept
	form.Set("city", "Islamabad")
	res = p.Predict(form)
	assert.NilError(t, res.Err)
	assert.Assert(t, approx(res.Price, want-40000))
}

func TestPredictResultText(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{price: 173345.678, want: "🏠 Predicted Price: 173345.68"},
		{price: -12.5, want: "🏠 Predicted Price: -12.50"},
		{price: 0, want: "🏠 Predicted Price: 0.00"},
		{price: math.NaN(), want: "🏠 Predicted Price: nan"},
		{price: math.Inf(1), want: "🏠 Predicted Price: inf"},
		{price: math.Inf(-1), want: "🏠 Predicted Price: -inf"},
	}
	for _, tt := range tests {
		assert.Equal(t, PredictResult{Price: tt.price}.Text(), tt.want)
	}
}

func TestPredictorPredictNaNArea(t *testing.T) {
	p := newTestPredictor(t)
	res := p.Predict(url.Values{"area": {"nan"}, "bedrooms": {"3"}, "baths": {"2"}, "city": {"Lahore"}})
	assert.NilError(t, res.Err)
	assert.Equal(t, res.Text(), "🏠 Predicted Price: nan")
}

func TestPredictorPredictInvalidInput(t *testing.T) {
	p := newTestPredictor(t)
	tests := []struct {
		name string
		form url.Values
	}{
		{name: "non-numeric area", form: url.Values{"area": {"abc"}, "bedrooms": {"3"}, "baths": {"2"}, "city": {"Lahore"}}},
		{name: "fractional bedrooms", form: url.Values{"area": {"1000"}, "bedrooms": {"3.5"}, "baths": {"2"}, "city": {"Lahore"}}},
		{name: "missing baths", form: url.Values{"area": {"1000"}, "bedrooms": {"3"}, "city": {"Lahore"}}},
		{name: "missing city", form: url.Values{"area": {"1000"}, "bedrooms": {"3"}, "baths": {"2"}}},
		{name: "empty form", form: url.Values{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Predict(tt.form)
			assert.Assert(t, !res.OK())
			assert.Assert(t, errors.Is(res.Err, ErrInvalidInput), "error = %v", res.Err)
			assert.Assert(t, res.Err.Error() != "")
		})
	}
}

func TestNewPredictorRejectsMismatchedLayout(t *testing.T) {
	model := &LinearRegression{coef: []float64{1, 2}, features: []string{"area", "baths"}}
	_, err := NewPredictor(model, &ColumnLayout{Columns: []string{"baths", "area"}})
	assert.ErrorContains(t, err, "do not match")
}

func TestLoadColumnLayout(t *testing.T) {
	dir := t.TempDir()

	legacy := filepath.Join(dir, "legacy.json")
	assert.NilError(t, os.WriteFile(legacy, []byte(`["area","bedrooms","baths","city_Lahore"]`), 0o600))
	layout, err := LoadColumnLayout(legacy)
	assert.NilError(t, err)
	assert.DeepEqual(t, layout.Columns, []string{"area", "bedrooms", "baths", "city_Lahore"})
	assert.DeepEqual(t, layout.CategoriesOf(CityColumn), DefaultCities)

	full := filepath.Join(dir, "layout.json")
	saved := &ColumnLayout{Columns: []string{"area", "city_b"}, Categories: map[string][]string{CityColumn: {"a", "b"}}}
	assert.NilError(t, saved.Save(full))
	layout, err = LoadColumnLayout(full)
	assert.NilError(t, err)
	assert.DeepEqual(t, layout, saved)

	empty := filepath.Join(dir, "empty.json")
	assert.NilError(t, os.WriteFile(empty, []byte(`[]`), 0o600))
	_, err = LoadColumnLayout(empty)
	assert.ErrorContains(t, err, "empty")
}

func TestLoadPredictorMissingArtifacts(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadPredictor(filepath.Join(dir, "model.json"), filepath.Join(dir, "columns.json"))
	assert.Assert(t, errors.Is(err, os.ErrNotExist), "error = %v", err)
}
