package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NormalizeGUID validates a declared document or section GUID and returns
// its canonical lowercase form, so the same identifier always lands on the
// same natural key regardless of source casing.
func NormalizeGUID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid GUID %q: %w", raw, err)
	}
	return id.String(), nil
}
