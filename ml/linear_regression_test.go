package ml

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gotest.tools/v3/assert"
)

func mustDataset(t *testing.T, columns []string, rows [][]float64, y []float64) *Dataset {
	t.Helper()
	ds, err := NewDataset(columns, rows, y)
	assert.NilError(t, err)
	return ds
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-8
}

func TestLinearRegressionFitWithIntercept(t *testing.T) {
	rows := [][]float64{{1, 0}, {2, 1}, {3, 5}, {4, 2}, {0, 7}}
	y := make([]float64, len(rows))
	for i, r := range rows {
		y[i] = 2*r[0] + 3*r[1] + 1
	}
	model := NewLinearRegression(true)
	assert.NilError(t, model.Fit(mustDataset(t, []string{"a", "b"}, rows, y)))

	coef := model.Coefficients()
	assert.Assert(t, approx(coef[0], 2), "coef[0] = %v", coef[0])
	assert.Assert(t, approx(coef[1], 3), "coef[1] = %v", coef[1])
	assert.Assert(t, approx(model.Intercept(), 1), "intercept = %v", model.Intercept())

	preds, err := model.Predict(mat.NewDense(1, 2, []float64{10, 10}))
	assert.NilError(t, err)
	assert.Assert(t, approx(preds[0], 51), "prediction = %v", preds[0])
}

func TestLinearRegressionFitWithoutIntercept(t *testing.T) {
	rows := [][]float64{{1}, {2}, {3}}
	model := NewLinearRegression(false)
	assert.NilError(t, model.Fit(mustDataset(t, []string{"x"}, rows, []float64{3, 6, 9})))
	assert.Assert(t, approx(model.Coefficients()[0], 3))
	assert.Equal(t, model.Intercept(), 0.0)
}

func TestLinearRegressionRankDeficient(t *testing.T) {
	// the second column duplicates the first and the third is constant
	rows := [][]float64{{1, 1, 1}, {2, 2, 1}, {3, 3, 1}, {4, 4, 1}}
	y := []float64{5, 9, 13, 17}
	model := NewLinearRegression(true)
	assert.NilError(t, model.Fit(mustDataset(t, []string{"x", "x_copy", "one"}, rows, y)))

	preds, err := model.Predict(mat.NewDense(4, 3, []float64{1, 1, 1, 2, 2, 1, 3, 3, 1, 4, 4, 1}))
	assert.NilError(t, err)
	for i := range y {
		assert.Assert(t, approx(preds[i], y[i]), "row %d: %v != %v", i, preds[i], y[i])
	}
	coef := model.Coefficients()
	assert.Assert(t, approx(coef[0], coef[1]), "minimum-norm solution splits weight evenly: %v", coef)
}

func TestLinearRegressionPredictErrors(t *testing.T) {
	_, err := NewLinearRegression(true).Predict(mat.NewDense(1, 1, []float64{1}))
	assert.Assert(t, errors.Is(err, ErrNotFitted))

	model := NewLinearRegression(true)
	assert.NilError(t, model.Fit(mustDataset(t, []string{"x"}, [][]float64{{1}, {2}}, []float64{1, 2})))
	_, err = model.Predict(mat.NewDense(1, 2, []float64{1, 2}))
	assert.Assert(t, errors.Is(err, ErrInvalidInput))
}

func TestLinearRegressionSaveLoad(t *testing.T) {
	model := NewLinearRegression(true)
	assert.NilError(t, model.Fit(mustDataset(t, []string{"area", "bedrooms"},
		[][]float64{{1000, 2}, {1500, 3}, {2000, 3}, {3000, 5}},
		[]float64{10, 14, 19, 30})))

	path := filepath.Join(t.TempDir(), "model.json")
	assert.NilError(t, model.Save(path))

	loaded, err := LoadModel(path)
	assert.NilError(t, err)
	assert.DeepEqual(t, loaded.FeatureNames(), []string{"area", "bedrooms"})

	x := mat.NewDense(1, 2, []float64{1800, 4})
	want, _ := model.Predict(x)
	got, err := loaded.Predict(x)
	assert.NilError(t, err)
	assert.Equal(t, got[0], want[0])
}

func TestNewModel(t *testing.T) {
	off := false
	model, err := NewModel(ModelSpec{Type: ModelTypeLinearRegression, FitIntercept: &off})
	assert.NilError(t, err)
	assert.Equal(t, model.(*LinearRegression).fitIntercept, false)

	model, err = NewModel(ModelSpec{Type: ModelTypeLinearRegression})
	assert.NilError(t, err)
	assert.Equal(t, model.(*LinearRegression).fitIntercept, true)

	_, err = NewModel(ModelSpec{Type: "RandomForest"})
	assert.Assert(t, errors.Is(err, ErrUnsupportedModel))
}
