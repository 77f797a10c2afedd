package behavior

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TreeDefinition is a declarative behavior tree in JSON or YAML form.
// Nodes are named and reference each other by name, so shared subtrees are
// written once. Root names the entry node.
type TreeDefinition struct {
	Root  string                    `json:"root" yaml:"root"`
	Nodes map[string]NodeDefinition `json:"nodes" yaml:"nodes"`
}

// NodeDefinition describes a single node. Type selects the constructor,
// Children/Child reference other definitions by name, Condition/Action name
// a registered leaf factory, and Params carries constructor arguments.
type NodeDefinition struct {
	Type      string         `json:"type" yaml:"type"`
	Children  []string       `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string         `json:"child,omitempty" yaml:"child,omitempty"`
	Condition string         `json:"condition,omitempty" yaml:"condition,omitempty"`
	Action    string         `json:"action,omitempty" yaml:"action,omitempty"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadDefinitionJSON reads a tree definition from JSON.
func LoadDefinitionJSON(r io.Reader) (*TreeDefinition, error) {
	var def TreeDefinition
	dec := json.NewDecoder(r)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// LoadDefinitionYAML reads a tree definition from YAML.
func LoadDefinitionYAML(r io.Reader) (*TreeDefinition, error) {
	var def TreeDefinition
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	return &def, nil
}

// LoadDefinitionFile reads a tree definition from disk, picking the decoder
// by file extension (.json, .yaml, .yml).
func LoadDefinitionFile(path string) (*TreeDefinition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadDefinitionJSON(f)
	case ".yaml", ".yml":
		return LoadDefinitionYAML(f)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrInvalidDefinition, filepath.Ext(path))
	}
}

// ParamString reads a string parameter.
func ParamString(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ParamInt reads an integer parameter. JSON decodes numbers as float64 and
// YAML as int, so both are accepted.
func ParamInt(params map[string]any, key string) (int, bool) {
	switch v := params[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// ParamFloat reads a float parameter.
func ParamFloat(params map[string]any, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// ParamBool reads a boolean parameter.
func ParamBool(params map[string]any, key string) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// ParamDuration reads a duration parameter. Strings go through
// time.ParseDuration ("250ms", "1.5s"); bare numbers are milliseconds.
func ParamDuration(params map[string]any, key string) (time.Duration, bool) {
	switch v := params[key].(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false
		}
		return d, true
	case int:
		return time.Duration(v) * time.Millisecond, true
	case int64:
		return time.Duration(v) * time.Millisecond, true
	case float64:
		return time.Duration(v * float64(time.Millisecond)), true
	default:
		return 0, false
	}
}
