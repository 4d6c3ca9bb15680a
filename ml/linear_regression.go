package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearRegression is an ordinary least squares model.
type LinearRegression struct {
	fitIntercept bool
	coef         []float64
	intercept    float64
	features     []string
}

type linearModelFile struct {
	Type         string    `json:"type"`
	FitIntercept bool      `json:"fit_intercept"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Features     []string  `json:"features"`
}

func NewLinearRegression(fitIntercept bool) *LinearRegression {
	return &LinearRegression{fitIntercept: fitIntercept}
}

// Fit solves min ||y - Xb|| through an SVD of X, so rank-deficient designs
// (e.g. a constant indicator column) get the minimum-norm solution instead of
// an error. With an intercept, X and y are centered first.
func (lr *LinearRegression) Fit(ds *Dataset) error {
	if ds == nil || ds.Len() == 0 {
		return errors.New("features or target empty")
	}
	r, c := ds.X.Dims()
	if r != len(ds.Y) {
		return errors.New("features and target size mismatch")
	}

	x := mat.DenseCopyOf(ds.X)
	y := append([]float64(nil), ds.Y...)
	xMean := make([]float64, c)
	yMean := 0.0
	if lr.fitIntercept {
		col := make([]float64, r)
		for j := 0; j < c; j++ {
			mat.Col(col, j, x)
			xMean[j] = stat.Mean(col, nil)
			floats.AddConst(-xMean[j], col)
			x.SetCol(j, col)
		}
		yMean = stat.Mean(y, nil)
		floats.AddConst(-yMean, y)
	}

	coef := make([]float64, c)
	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return errors.New("svd factorization failed")
	}
	rcond := math.Nextafter(1, 2) - 1
	rcond *= float64(max(r, c))
	if rank := svd.Rank(rcond); rank > 0 {
		var solution mat.VecDense
		svd.SolveVecTo(&solution, mat.NewVecDense(r, y), rank)
		for j := range coef {
			coef[j] = solution.AtVec(j)
		}
	}

	lr.coef = coef
	lr.intercept = 0
	if lr.fitIntercept {
		lr.intercept = yMean - floats.Dot(xMean, coef)
	}
	lr.features = append([]string(nil), ds.Columns...)
	return nil
}

// Predict returns one value per row of x.
func (lr *LinearRegression) Predict(x mat.Matrix) ([]float64, error) {
	if lr.coef == nil {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != len(lr.coef) {
		return nil, fmt.Errorf("%w: model expects %d features, got %d", ErrInvalidInput, len(lr.coef), c)
	}
	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(c, lr.coef))
	preds := make([]float64, r)
	for i := range preds {
		preds[i] = out.AtVec(i) + lr.intercept
	}
	return preds, nil
}

func (lr *LinearRegression) Coefficients() []float64 {
	return append([]float64(nil), lr.coef...)
}

func (lr *LinearRegression) Intercept() float64 {
	return lr.intercept
}

func (lr *LinearRegression) FeatureNames() []string {
	return append([]string(nil), lr.features...)
}

func (lr *LinearRegression) Save(path string) error {
	if lr.coef == nil {
		return ErrNotFitted
	}
	payload, err := json.MarshalIndent(linearModelFile{
		Type:         ModelTypeLinearRegression,
		FitIntercept: lr.fitIntercept,
		Coefficients: lr.coef,
		Intercept:    lr.intercept,
		Features:     lr.features,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func (lr *LinearRegression) unmarshal(payload []byte) error {
	var file linearModelFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return err
	}
	if file.Coefficients == nil {
		return ErrNotFitted
	}
	if len(file.Features) != 0 && len(file.Features) != len(file.Coefficients) {
		return fmt.Errorf("%d feature names for %d coefficients", len(file.Features), len(file.Coefficients))
	}
	lr.fitIntercept = file.FitIntercept
	lr.coef = file.Coefficients
	lr.intercept = file.Intercept
	lr.features = file.Features
	return nil
}
