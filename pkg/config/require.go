package config

import (
	"log"
	"slices"
	"strings"
)

// MissingKeys returns the sorted names whose values are empty.
func MissingKeys(settings map[string]string) []string {
	var missing []string
	for name, v := range settings {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

// MustNonEmpty exits listing every required setting that is unset.
func MustNonEmpty(settings map[string]string) {
	if missing := MissingKeys(settings); len(missing) > 0 {
		log.Fatalf("missing required env: %s", strings.Join(missing, ", "))
	}
}
