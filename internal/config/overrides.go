package config

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Override is a single `key.path=value` assignment from the command line.
type Override struct {
	Path  []string
	Raw   string
	Value cty.Value
}

// ParseOverride splits an assignment and evaluates its right-hand side as an
// HCL expression. Bare words that are not valid literals (for example
// `out/run1`) are taken as strings.
func ParseOverride(arg string) (Override, error) {
	key, raw, ok := strings.Cut(arg, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return Override{}, fmt.Errorf("invalid override %q: expected key.path=value", arg)
	}
	path := strings.Split(key, ".")
	for _, part := range path {
		if part == "" {
			return Override{}, fmt.Errorf("invalid override %q: empty path segment", arg)
		}
	}

	return Override{Path: path, Raw: raw, Value: evalLiteral(raw)}, nil
}

func evalLiteral(raw string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(raw), "<override>", hcl.InitialPos)
	if diags.HasErrors() || len(expr.Variables()) > 0 {
		return cty.StringVal(raw)
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() || !val.IsWhollyKnown() {
		return cty.StringVal(raw)
	}
	return val
}

// ApplyOverrides writes each override onto m. Unknown keys and values that do
// not convert to the attribute's type are configuration errors.
func (m *Model) ApplyOverrides(overrides []Override) error {
	if len(overrides) == 0 {
		return nil
	}
	ty, err := gocty.ImpliedType(m)
	if err != nil {
		return fmt.Errorf("failed to derive configuration type: %w", err)
	}
	val, err := gocty.ToCtyValue(m, ty)
	if err != nil {
		return fmt.Errorf("failed to lift configuration: %w", err)
	}

	for _, o := range overrides {
		val, err = setPath(val, o.Path, o.Value, o.Path)
		if err != nil {
			return err
		}
	}

	var out Model
	if err := gocty.FromCtyValue(val, &out); err != nil {
		return fmt.Errorf("failed to lower configuration: %w", err)
	}
	*m = out
	return nil
}

func setPath(obj cty.Value, path []string, v cty.Value, full []string) (cty.Value, error) {
	key := strings.Join(full, ".")
	name := path[0]
	if !obj.Type().IsObjectType() || !obj.Type().HasAttribute(name) {
		return cty.NilVal, &ValidationError{Field: key, Reason: "unknown configuration key"}
	}
	if obj.IsNull() {
		return cty.NilVal, &ValidationError{Field: key, Reason: "parent block is unset"}
	}

	attrs := obj.AsValueMap()
	if len(path) == 1 {
		converted, err := convert.Convert(v, obj.Type().AttributeType(name))
		if err != nil {
			return cty.NilVal, &ValidationError{Field: key, Reason: err.Error()}
		}
		attrs[name] = converted
		return cty.ObjectVal(attrs), nil
	}

	child, err := setPath(attrs[name], path[1:], v, full)
	if err != nil {
		return cty.NilVal, err
	}
	attrs[name] = child
	return cty.ObjectVal(attrs), nil
}

// ToMap renders the model as nested maps keyed by the configuration names,
// suitable for embedding in metadata records.
func (m *Model) ToMap() (map[string]any, error) {
	ty, err := gocty.ImpliedType(m)
	if err != nil {
		return nil, err
	}
	val, err := gocty.ToCtyValue(m, ty)
	if err != nil {
		return nil, err
	}
	raw, err := ctyjson.Marshal(val, ty)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
