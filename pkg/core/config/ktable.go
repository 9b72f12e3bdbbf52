package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/hjson/hjson-go/v4"
)

// LoadKTable reads a K-factor override table from an HJSON file of
// ratio -> K pairs, for shops that calibrated their own values:
//
//	{
//	  // radius/thickness ratio: K
//	  0.5: 0.36
//	  1.0: 0.42
//	}
//
// A missing file returns a nil map, which selects the built-in table.
func LoadKTable(path string) (map[float64]float64, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read K table %s: %w", path, err)
	}

	var raw map[string]any
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse K table %s: %w", path, err)
	}

	out := make(map[float64]float64, len(raw))
	for key, val := range raw {
		ratio, err := strconv.ParseFloat(key, 64)
		if err != nil {
			return nil, fmt.Errorf("K table %s: ratio %q is not a number", path, key)
		}
		k, ok := val.(float64)
		if !ok {
			return nil, fmt.Errorf("K table %s: value for ratio %q is not a number", path, key)
		}
		out[ratio] = k
	}
	return out, nil
}
