package ml

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadModel reads a saved model, dispatching on the type recorded in the file.
func LoadModel(path string) (Regressor, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	switch header.Type {
	case ModelTypeLinearRegression:
		model := &LinearRegression{}
		if err := model.unmarshal(payload); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return model, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModel, header.Type)
	}
}
