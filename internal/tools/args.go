package tools

import (
	"fmt"
	"time"
)

// argString reads a required string argument.
func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("argument %q must be a non-empty string", key)
	}
	return s, nil
}

// argStringOpt reads an optional string argument, nil when absent.
func argStringOpt(args map[string]any, key string) (*string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("argument %q must be a string", key)
	}
	return &s, nil
}

// argIntOpt reads an optional integer argument. JSON numbers decode as
// float64, so both forms are accepted.
func argIntOpt(args map[string]any, key string) (*int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch n := v.(type) {
	case float64:
		i := int(n)
		return &i, nil
	case int:
		return &n, nil
	default:
		return nil, fmt.Errorf("argument %q must be a number", key)
	}
}

// argTime reads a required RFC 3339 timestamp argument.
func argTime(args map[string]any, key string) (time.Time, error) {
	s, err := argString(args, key)
	if err != nil {
		return time.Time{}, err
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("argument %q must be an RFC 3339 timestamp: %v", key, err)
	}
	return ts, nil
}

// argTimeOpt reads an optional RFC 3339 timestamp argument, nil when absent.
func argTimeOpt(args map[string]any, key string) (*time.Time, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("argument %q must be a string", key)
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("argument %q must be an RFC 3339 timestamp: %v", key, err)
	}
	return &ts, nil
}
