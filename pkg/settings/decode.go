// SPDX-License-Identifier: MPL-2.0

package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// DecodeOptionValues decodes every raw value as a JSON literal.
//
// Options are decoded independently. Integral numbers become int64, or
// *big.Int beyond the int64 range, other numbers float64, arrays []any and
// objects map[string]any. Floats beyond the float64 range become ±Inf. The first
// failure, in option name order, is returned as an *InvalidSettingValueError.
func DecodeOptionValues(raw map[string]string) (ResolvedOptions, error) {
	decoded := make(ResolvedOptions, len(raw))
	for _, name := range sortedKeys(raw) {
		value, err := DecodeValue(raw[name])
		if err != nil {
			return nil, &InvalidSettingValueError{Option: name, Value: raw[name], Cause: err}
		}
		decoded[name] = value
	}
	return decoded, nil
}

// DecodeValue decodes a single JSON literal. Anything after the literal
// other than whitespace is an error.
func DecodeValue(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty value")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}

	return normalizeNumbers(value)
}

// normalizeNumbers replaces json.Number values with int64, *big.Int or
// float64.
func normalizeNumbers(value any) (any, error) {
	switch v := value.(type) {
	case json.Number:
		return normalizeNumber(v)
	case []any:
		for i, item := range v {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			v[i] = n
		}
		return v, nil
	case map[string]any:
		for key, item := range v {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			v[key] = n
		}
		return v, nil
	default:
		return v, nil
	}
}

func normalizeNumber(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, ok := new(big.Int).SetString(n.String(), 10); ok {
			return i, nil
		}
	}
	f, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, fmt.Errorf("invalid number %s: %w", n, err)
	}
	return f, nil
}
