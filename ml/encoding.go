package ml

import (
	"sort"
	"strconv"
	"strings"

	"houseprice/pipeline"
)

// Encoded is a frame after one-hot expansion.
type Encoded struct {
	Columns []string
	Rows    [][]float64
	// Categories holds every category seen per expanded column, sorted,
	// including one dropped as the reference level.
	Categories map[string][]string
}

// IndicatorName is the column name of the indicator for category in column.
func IndicatorName(column, category string) string {
	return column + "_" + category
}

// OneHotEncode keeps numeric columns (every cell parses as a float) in place
// and appends one indicator column per category of each remaining column.
// Categories are sorted; with dropFirst the first one is left out. The frame
// must not contain missing cells.
func OneHotEncode(frame *pipeline.Frame, dropFirst bool) (*Encoded, error) {
	numeric := make([][]float64, 0, len(frame.Header))
	var numericNames, categorical []string
	for _, name := range frame.Header {
		values, err := frame.Column(name)
		if err != nil {
			return nil, err
		}
		if parsed, ok := parseNumeric(values); ok {
			numeric = append(numeric, parsed)
			numericNames = append(numericNames, name)
			continue
		}
		categorical = append(categorical, name)
	}

	enc := &Encoded{
		Columns:    append([]string(nil), numericNames...),
		Categories: make(map[string][]string, len(categorical)),
	}
	type indicator struct {
		column   string
		category string
	}
	var indicators []indicator
	for _, name := range categorical {
		values, _ := frame.Column(name)
		categories := uniqueSorted(values)
		enc.Categories[name] = categories
		kept := categories
		if dropFirst && len(kept) > 0 {
			kept = kept[1:]
		}
		for _, category := range kept {
			indicators = append(indicators, indicator{column: name, category: category})
			enc.Columns = append(enc.Columns, IndicatorName(name, category))
		}
	}

	categoricalValues := make(map[string][]string, len(categorical))
	for _, name := range categorical {
		categoricalValues[name], _ = frame.Column(name)
	}

	enc.Rows = make([][]float64, frame.Len())
	for i := range enc.Rows {
		row := make([]float64, 0, len(enc.Columns))
		for _, col := range numeric {
			row = append(row, col[i])
		}
		for _, ind := range indicators {
			if categoricalValues[ind.column][i] == ind.category {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
		enc.Rows[i] = row
	}
	return enc, nil
}

// Reindex lays row out in columns order. Columns absent from row are 0 and
// entries of row not named in columns are dropped.
func Reindex(row map[string]float64, columns []string) []float64 {
	out := make([]float64, len(columns))
	for i, name := range columns {
		out[i] = row[name]
	}
	return out
}

func parseNumeric(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, value := range values {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}
