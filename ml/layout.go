package ml

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// CityColumn is the categorical column the predictor expands.
const CityColumn = "city"

// DefaultCities is used when a layout file carries no category list.
var DefaultCities = []string{"Islamabad", "Karachi", "Lahore", "Rawalpindi"}

// ColumnLayout is the training-time column order plus every category each
// expanded column had, dropped reference level included.
type ColumnLayout struct {
	Columns    []string            `json:"columns"`
	Categories map[string][]string `json:"categories,omitempty"`
}

// CategoriesOf returns the known categories of column, falling back to
// DefaultCities for the city column.
func (l *ColumnLayout) CategoriesOf(column string) []string {
	if cats, ok := l.Categories[column]; ok {
		return cats
	}
	if column == CityColumn {
		return DefaultCities
	}
	return nil
}

func (l *ColumnLayout) Save(path string) error {
	payload, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// LoadColumnLayout reads a layout file. A bare JSON array of column names is
// accepted as well.
func LoadColumnLayout(path string) (*ColumnLayout, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	layout := &ColumnLayout{}
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &layout.Columns)
	} else {
		err = json.Unmarshal(trimmed, layout)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(layout.Columns) == 0 {
		return nil, errors.New("column layout is empty")
	}
	return layout, nil
}
