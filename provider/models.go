package provider

import (
	"fmt"

	apperrors "github.com/kbukum/scoutkit/errors"
)

// ResolveModel validates a requested model against a vendor's table.
// An empty request resolves to the default; an unknown model is a
// configuration error naming the accepted models.
func ResolveModel(vendor, requested string, models []string, defaultModel string) (string, error) {
	if requested == "" {
		return defaultModel, nil
	}
	for _, m := range models {
		if m == requested {
			return m, nil
		}
	}
	return "", apperrors.Configuration(
		fmt.Sprintf("%s does not support model %q (available: %v)", vendor, requested, models))
}
