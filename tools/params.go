package tools

import (
	"errors"
	"fmt"
)

// BindError reports a failure to bind invocation parameters to a handler's
// declared inputs. It is classified separately from handler failures so
// callers can branch on kind rather than message text.
type BindError struct {
	Param  string
	Reason string
}

func (e *BindError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("invalid parameters: %s", e.Reason)
	}
	return fmt.Sprintf("invalid parameter %q: %s", e.Param, e.Reason)
}

// IsBindError reports whether err is (or wraps) a parameter binding failure.
func IsBindError(err error) bool {
	var be *BindError
	return errors.As(err, &be)
}

// Params carries the named arguments of a tool invocation. The typed
// accessors return a *BindError on missing or mistyped values, which the
// registry converts into an invalid-parameters result.
type Params map[string]any

// String returns the named parameter as a string.
func (p Params) String(name string) (string, error) {
	v, ok := p[name]
	if !ok {
		return "", &BindError{Param: name, Reason: "missing required parameter"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &BindError{Param: name, Reason: fmt.Sprintf("expected string, got %T", v)}
	}
	return s, nil
}

// Float returns the named parameter as a float64. JSON numbers decode as
// float64, but integer literals supplied directly are accepted too.
func (p Params) Float(name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, &BindError{Param: name, Reason: "missing required parameter"}
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, &BindError{Param: name, Reason: fmt.Sprintf("expected number, got %T", v)}
}

// Int returns the named parameter as an int, rejecting fractional values.
func (p Params) Int(name string) (int, error) {
	f, err := p.Float(name)
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, &BindError{Param: name, Reason: "expected integer"}
	}
	return n, nil
}

// Bool returns the named parameter as a bool.
func (p Params) Bool(name string) (bool, error) {
	v, ok := p[name]
	if !ok {
		return false, &BindError{Param: name, Reason: "missing required parameter"}
	}
	b, ok := v.(bool)
	if !ok {
		return false, &BindError{Param: name, Reason: fmt.Sprintf("expected bool, got %T", v)}
	}
	return b, nil
}

// Object returns the named parameter as a nested mapping.
func (p Params) Object(name string) (map[string]any, error) {
	v, ok := p[name]
	if !ok {
		return nil, &BindError{Param: name, Reason: "missing required parameter"}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, &BindError{Param: name, Reason: fmt.Sprintf("expected object, got %T", v)}
	}
	return m, nil
}

// checkSchema validates params against a JSON-schema-shaped input schema.
// Only the "required" list and per-property "type" tags are enforced; the
// full schema is advisory metadata for remote callers.
func checkSchema(schema map[string]any, params Params) error {
	if schema == nil {
		return nil
	}
	if required, ok := schema["required"].([]any); ok {
		for _, raw := range required {
			name, ok := raw.(string)
			if !ok {
				continue
			}
			if _, present := params[name]; !present {
				return &BindError{Param: name, Reason: "missing required parameter"}
			}
		}
	}
	if required, ok := schema["required"].([]string); ok {
		for _, name := range required {
			if _, present := params[name]; !present {
				return &BindError{Param: name, Reason: "missing required parameter"}
			}
		}
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		return nil
	}
	for name, raw := range props {
		value, present := params[name]
		if !present {
			continue
		}
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		want, ok := prop["type"].(string)
		if !ok {
			continue
		}
		if !matchesType(want, value) {
			return &BindError{Param: name, Reason: fmt.Sprintf("expected %s, got %T", want, value)}
		}
	}
	return nil
}

func matchesType(want string, value any) bool {
	switch want {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch n := value.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	}
	// Unknown schema types are not enforced.
	return true
}
