package node

import "fmt"

// configString returns config[key] as a string, or ok=false if absent or
// not a string. JSON-decoded config maps always hold Go strings for JSON
// string values, so no numeric coercion is needed here.
func configString(config map[string]interface{}, key string) (string, bool) {
	v, exists := config[key]
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// requireString fetches a required, non-empty string field.
func requireString(config map[string]interface{}, key string) (string, error) {
	s, ok := configString(config, key)
	if !ok || s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingConfigField, key)
	}
	return s, nil
}

// optionalString fetches a string field, defaulting if absent.
func optionalString(config map[string]interface{}, key, def string) string {
	s, ok := configString(config, key)
	if !ok {
		return def
	}
	return s
}

// optionalBool fetches a bool field, defaulting if absent or the wrong type.
func optionalBool(config map[string]interface{}, key string, def bool) bool {
	v, exists := config[key]
	if !exists {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// stringSlice reads a []string field from a decoded JSON array
// ([]interface{} of strings). Returns (nil, false) if the key is absent;
// an error if present but not a string array.
func stringSlice(config map[string]interface{}, key string) ([]string, bool, error) {
	v, exists := config[key]
	if !exists {
		return nil, false, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, true, fmt.Errorf("%w: %s must be a list of strings", ErrInvalidConfigField, key)
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, true, fmt.Errorf("%w: %s[%d] is not a string", ErrInvalidConfigField, key, i)
		}
		out[i] = s
	}
	return out, true, nil
}

// requireStringSlice reads a required, non-empty []string field.
func requireStringSlice(config map[string]interface{}, key string) ([]string, error) {
	out, present, err := stringSlice(config, key)
	if err != nil {
		return nil, err
	}
	if !present || len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfigField, key)
	}
	return out, nil
}

// mapSlice reads a []map[string]interface{} field from a decoded JSON
// array of objects.
func mapSlice(config map[string]interface{}, key string) ([]map[string]interface{}, error) {
	v, exists := config[key]
	if !exists {
		return nil, nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a list of objects", ErrInvalidConfigField, key)
	}
	out := make([]map[string]interface{}, len(raw))
	for i, item := range raw {
		m, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not an object", ErrInvalidConfigField, key, i)
		}
		out[i] = m
	}
	return out, nil
}
