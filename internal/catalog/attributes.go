package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// Catalog JSON and YAML disagree on number types (float64, int, json.Number),
// so every field goes through these helpers.

// stringValue converts scalar values to their display string
func stringValue(val any) (string, bool) {
	switch v := val.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// GetStringAttribute extracts a string field, converting scalars
func GetStringAttribute(attrs map[string]any, key string) (string, bool) {
	val, ok := attrs[key]
	if !ok || val == nil {
		return "", false
	}
	return stringValue(val)
}

// GetDecimalAttribute extracts a money amount without going through float64
// when the source kept the original text
func GetDecimalAttribute(attrs map[string]any, key string) (decimal.Decimal, bool, error) {
	val, ok := attrs[key]
	if !ok || val == nil {
		return decimal.Zero, false, nil
	}

	switch v := val.(type) {
	case string:
		if v == "" {
			return decimal.Zero, false, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return d, true, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		return d, true, nil
	case float64:
		return decimal.NewFromFloat(v), true, nil
	case int:
		return decimal.NewFromInt(int64(v)), true, nil
	case int64:
		return decimal.NewFromInt(v), true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("invalid %s: unsupported type %T", key, val)
	}
}

// GetMetadataAttribute extracts a metadata collection. Both the list form
// [{key, value}] and the plain object form {key: value} are accepted.
func GetMetadataAttribute(attrs map[string]any, key string) ([]MetaEntry, error) {
	val, ok := attrs[key]
	if !ok || val == nil {
		return nil, nil
	}

	switch v := val.(type) {
	case []any:
		entries := make([]MetaEntry, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d]: expected an object, got %T", key, i, item)
			}
			k, ok := GetStringAttribute(m, "key")
			if !ok {
				return nil, fmt.Errorf("%s[%d]: missing key", key, i)
			}
			entries = append(entries, MetaEntry{Key: k, Value: m["value"]})
		}
		return entries, nil
	case map[string]any:
		entries := make([]MetaEntry, 0, len(v))
		for k, item := range v {
			entries = append(entries, MetaEntry{Key: k, Value: item})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
		return entries, nil
	default:
		return nil, fmt.Errorf("%s: unsupported type %T", key, val)
	}
}
