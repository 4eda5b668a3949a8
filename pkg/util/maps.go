package util

import (
	"strings"

	"golang.org/x/exp/slices"
)

// LowerKeys copies a property map with every key lower-cased. When two keys
// collide the one that sorts first wins, so the result does not depend on map
// iteration order.
func LowerKeys(properties map[string]interface{}) map[string]interface{} {
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	lowered := make(map[string]interface{}, len(properties))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if _, exists := lowered[lowerKey]; exists {
			continue
		}
		lowered[lowerKey] = properties[key]
	}

	return lowered
}

// FirstPresent returns the value of the first key present with a non-nil value
func FirstPresent(properties map[string]interface{}, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if value, exists := properties[key]; exists && value != nil {
			return value, true
		}
	}

	return nil, false
}
