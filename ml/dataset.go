package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Dataset is an encoded design matrix with its target and column names.
type Dataset struct {
	X       *mat.Dense
	Y       []float64
	Columns []string
}

// NewDataset packs row-major feature rows and targets.
func NewDataset(columns []string, rows [][]float64, y []float64) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset has no rows")
	}
	if len(columns) == 0 {
		return nil, errors.New("dataset has no feature columns")
	}
	if len(rows) != len(y) {
		return nil, fmt.Errorf("features and target size mismatch: %d != %d", len(rows), len(y))
	}
	data := make([]float64, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
		data = append(data, row...)
	}
	return &Dataset{
		X:       mat.NewDense(len(rows), len(columns), data),
		Y:       append([]float64(nil), y...),
		Columns: append([]string(nil), columns...),
	}, nil
}

// Len returns the number of rows.
func (ds *Dataset) Len() int {
	return len(ds.Y)
}

// Subset copies the rows at indices, in that order.
func (ds *Dataset) Subset(indices []int) *Dataset {
	_, c := ds.X.Dims()
	x := mat.NewDense(len(indices), c, nil)
	y := make([]float64, len(indices))
	for i, idx := range indices {
		x.SetRow(i, ds.X.RawRowView(idx))
		y[i] = ds.Y[idx]
	}
	return &Dataset{X: x, Y: y, Columns: ds.Columns}
}

// TrainTestSplit shuffles 0..n-1 with a seeded source and holds out
// ceil(testSize*n) indices. The same n, testSize and seed always give the
// same split.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int, err error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be in (0,1), got %v", testSize)
	}
	nTest := int(math.Ceil(testSize * float64(n)))
	nTrain := n - nTest
	if nTest == 0 || nTrain <= 0 {
		return nil, nil, fmt.Errorf("cannot split %d rows with test size %v", n, testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return perm[nTest:], perm[:nTest], nil
}
