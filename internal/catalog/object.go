package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Object converts the product into a cty object so binding keys can be
// traversed against it. Top-level attributes: id, name, price (two decimals),
// metadata, barcode (when present) plus every extra field.
func (p *Product) Object() (cty.Value, error) {
	attrs := make(map[string]cty.Value, len(p.Extra)+5)

	for key, val := range p.Extra {
		v, err := toCty(val)
		if err != nil {
			return cty.NilVal, fmt.Errorf("field %s: %w", key, err)
		}
		attrs[key] = v
	}

	meta := make(map[string]cty.Value, len(p.Metadata))
	for _, entry := range p.Metadata {
		if _, seen := meta[entry.Key]; seen {
			continue
		}
		v, err := toCty(entry.Value)
		if err != nil {
			return cty.NilVal, fmt.Errorf("metadata %s: %w", entry.Key, err)
		}
		meta[entry.Key] = v
	}

	attrs["id"] = cty.StringVal(p.ID)
	attrs["name"] = cty.StringVal(p.Name)
	attrs["price"] = cty.StringVal(p.Price.StringFixed(2))
	attrs["metadata"] = cty.ObjectVal(meta)
	if code := p.Barcode(); code != "" {
		attrs["barcode"] = cty.StringVal(code)
	}

	return cty.ObjectVal(attrs), nil
}

// toCty converts decoded JSON/YAML values into cty values
func toCty(val any) (cty.Value, error) {
	switch v := val.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(v), nil
	case bool:
		return cty.BoolVal(v), nil
	case json.Number:
		n, err := cty.ParseNumberVal(v.String())
		if err != nil {
			return cty.NilVal, err
		}
		return n, nil
	case float64:
		return cty.NumberFloatVal(v), nil
	case float32:
		return cty.NumberFloatVal(float64(v)), nil
	case int:
		return cty.NumberIntVal(int64(v)), nil
	case int64:
		return cty.NumberIntVal(v), nil
	case uint64:
		return cty.NumberUIntVal(v), nil
	case []any:
		if len(v) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, len(v))
		for i, item := range v {
			e, err := toCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			elems[i] = e
		}
		return cty.TupleVal(elems), nil
	case map[string]any:
		attrs := make(map[string]cty.Value, len(v))
		for key, item := range v {
			a, err := toCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf(".%s: %w", key, err)
			}
			attrs[key] = a
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported value type %T", val)
	}
}
