package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"

	"git.home.luguber.info/inful/tscdualbuild/internal/foundation/errors"
)

// object is one decoded JSON object level; values stay raw until inspected.
type object map[string]json.RawMessage

// readRelaxed reads path and converts it from relaxed JSON (comments,
// trailing commas) to standard JSON.
func readRelaxed(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, fmt.Sprintf("read %s", filepath.Base(path))).
			Fatal().
			WithContext(errors.ContextPath, path).
			Build()
	}
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, parseError(path, err)
	}
	return std, nil
}

func parseError(path string, err error) error {
	return errors.WrapError(err, errors.CategoryParse, fmt.Sprintf("%s is not valid JSON", filepath.Base(path))).
		Fatal().
		WithContext(errors.ContextFile, path).
		Build()
}

// decodeObject decodes standard JSON whose top level must be an object.
func decodeObject(path string, std []byte) (object, error) {
	var top object
	if err := json.Unmarshal(std, &top); err != nil {
		return nil, parseError(path, err)
	}
	if top == nil {
		return nil, parseError(path, fmt.Errorf("top-level value must be an object"))
	}
	return top, nil
}

// fieldChecker produces the per-field "<file> <path> is not set" errors.
type fieldChecker struct {
	file string // label used in messages, e.g. "tsconfig.json"
	path string // absolute file path for error context
}

func (fc fieldChecker) missing(dotted string) error {
	return errors.ConfigError(fmt.Sprintf("%s %s is not set", fc.file, dotted)).
		WithContext(errors.ContextField, dotted).
		WithContext(errors.ContextFile, fc.path).
		Build()
}

func (fc fieldChecker) wrongType(dotted, want string) error {
	return errors.ConfigError(fmt.Sprintf("%s %s must be %s", fc.file, dotted, want)).
		WithContext(errors.ContextField, dotted).
		WithContext(errors.ContextFile, fc.path).
		Build()
}

// object returns parent[key] as an object, failing when absent or falsy.
func (fc fieldChecker) object(parent object, key, dotted string) (object, error) {
	raw, ok := parent[key]
	if !ok || isFalsy(raw) {
		return nil, fc.missing(dotted)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fc.wrongType(dotted, "an object")
	}
	var child object
	if err := json.Unmarshal(raw, &child); err != nil {
		return nil, fc.wrongType(dotted, "an object")
	}
	return child, nil
}

// str returns parent[key] as a non-empty string, failing when absent or falsy.
func (fc fieldChecker) str(parent object, key, dotted string) (string, error) {
	raw, ok := parent[key]
	if !ok || isFalsy(raw) {
		return "", fc.missing(dotted)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fc.wrongType(dotted, "a string")
	}
	return s, nil
}

// present reports whether key exists with a non-null value.
func present(parent object, key string) bool {
	raw, ok := parent[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// isFalsy mirrors JavaScript truthiness for decoded JSON values: null, false,
// 0 and "" all count as unset.
func isFalsy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return true
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		return x == ""
	default:
		return false
	}
}
