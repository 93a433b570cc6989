package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Metadata is the descriptor persisted next to a model's weights.
// TargetF0Hz is the speaking-register baseline frequency captured when the
// model was trained.
type Metadata struct {
	TargetF0Hz float64 `json:"target_f0_hz"`
}

// Load reads a descriptor file. A missing file or a missing, non-positive or
// non-finite target frequency is a defined absent state, not an error: ok is
// false and err is nil. Read or parse failures on an existing file also
// report ok false, with err carrying the cause for the caller's logs.
func Load(path string) (Metadata, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Metadata{}, false, nil
		}
		return Metadata{}, false, fmt.Errorf("read %s: %w", path, err)
	}

	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, false, fmt.Errorf("parse %s: %w", path, err)
	}
	if meta.TargetF0Hz <= 0 || math.IsNaN(meta.TargetF0Hz) || math.IsInf(meta.TargetF0Hz, 0) {
		return Metadata{}, false, nil
	}
	return meta, true, nil
}
