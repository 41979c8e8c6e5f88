package utils

import "sort"

// CloneParams creates a shallow copy of a parameter assignment map.
func CloneParams(params map[string]interface{}) map[string]interface{} {
	if params == nil {
		return nil
	}
	clone := make(map[string]interface{}, len(params))
	for k, v := range params {
		clone[k] = v
	}
	return clone
}

// SortedKeys returns the keys of a map in ascending order. Parameter
// iteration must be deterministic wherever a seeded RNG is consumed,
// so callers iterate over SortedKeys instead of ranging the map.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
