package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Square feet per local land unit.
const (
	MarlaToSqFt = 272.25
	KanalToSqFt = 5445
)

// MissingFill replaces every missing cell. Rows with genuinely absent data are
// therefore indistinguishable from rows holding a literal zero.
const MissingFill = "0"

// naTokens are the cell spellings read as missing.
var naTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw cell denotes a missing value.
func IsMissing(value string) bool {
	_, ok := naTokens[value]
	return ok
}

// ConvertArea parses strings such as "9.6 Marla" into square feet. The first
// whitespace-separated token must be a number; otherwise ok is false and the
// value is treated as missing.
func ConvertArea(value string) (sqft float64, ok bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return 0, false
	}
	num, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || math.IsNaN(num) {
		return 0, false
	}
	switch {
	case strings.Contains(v, "marla"):
		return num * MarlaToSqFt, true
	case strings.Contains(v, "kanal"):
		return num * KanalToSqFt, true
	default:
		return num, true
	}
}

// CleaningRule rewrites a single cell of a named column.
type CleaningRule interface {
	Apply(column, value string) (cleaned string, changed bool)
	Name() string
}

// CleaningStats counts what the cleaner rewrote.
type CleaningStats struct {
	TotalCells int64            `json:"total_cells"`
	Changed    int64            `json:"changed"`
	Rules      map[string]int64 `json:"rules"`
}

// DataCleaner applies its rules, in order, to every cell of a frame.
type DataCleaner struct {
	rules []CleaningRule
}

// NewDataCleaner creates a cleaner running rules in the given order.
func NewDataCleaner(rules ...CleaningRule) *DataCleaner {
	return &DataCleaner{rules: rules}
}

// NewDefaultCleaner converts the area column to square feet and then fills
// missing cells.
func NewDefaultCleaner() *DataCleaner {
	return NewDataCleaner(NewAreaUnitRule("area"), NewMissingValueRule())
}

// Clean returns a cleaned copy of frame together with rewrite statistics.
func (dc *DataCleaner) Clean(frame *Frame) (*Frame, CleaningStats) {
	stats := CleaningStats{Rules: make(map[string]int64)}
	rows := make([][]string, len(frame.Rows))
	for i, row := range frame.Rows {
		cleaned := append([]string(nil), row...)
		for j, column := range frame.Header {
			stats.TotalCells++
			value := cleaned[j]
			touched := false
			for _, rule := range dc.rules {
				next, changed := rule.Apply(column, value)
				if changed {
					stats.Rules[rule.Name()]++
					touched = true
					value = next
				}
			}
			if touched {
				stats.Changed++
			}
			cleaned[j] = value
		}
		rows[i] = cleaned
	}

	return &Frame{Header: frame.Header, Rows: rows, index: frame.index}, stats
}

// AreaUnitRule converts one column from local units to square feet.
// Unparseable values become missing.
type AreaUnitRule struct {
	Column string
}

func NewAreaUnitRule(column string) *AreaUnitRule {
	return &AreaUnitRule{Column: column}
}

func (r *AreaUnitRule) Name() string {
	return "area_unit"
}

func (r *AreaUnitRule) Apply(column, value string) (string, bool) {
	if column != r.Column || IsMissing(value) {
		return value, false
	}
	sqft, ok := ConvertArea(value)
	if !ok {
		return "", true
	}
	formatted := strconv.FormatFloat(sqft, 'g', -1, 64)
	return formatted, formatted != value
}

// MissingValueRule replaces missing cells with MissingFill.
type MissingValueRule struct{}

func NewMissingValueRule() *MissingValueRule {
	return &MissingValueRule{}
}

func (r *MissingValueRule) Name() string {
	return "missing_value"
}

func (r *MissingValueRule) Apply(_, value string) (string, bool) {
	if IsMissing(value) {
		return MissingFill, true
	}
	return value, false
}

// ParseTarget converts target cells to floats, filling missing cells with 0.
func ParseTarget(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, value := range values {
		if IsMissing(value) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: target %q is not numeric", i+1, value)
		}
		if !math.IsNaN(v) {
			out[i] = v
		}
	}
	return out, nil
}
