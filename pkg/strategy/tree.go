package strategy

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ToTree converts cfg into the generic value tree the form interpreter edits:
// {"key": ..., "parameters": {...}, "logics": {...}}. Numbers come back as
// float64, matching what the interpreter writes.
func ToTree(cfg Config) (map[string]any, error) {
	if cfg == nil {
		return nil, fmt.Errorf("strategy: nil config")
	}
	tree, err := toMap(cfg)
	if err != nil {
		return nil, fmt.Errorf("strategy: encode %s: %w", cfg.Key(), err)
	}
	tree["key"] = string(cfg.Key())
	return tree, nil
}

// FromTree decodes a value tree for key into its typed configuration. Keys
// the typed shape does not know are rejected. A "key" entry, when present,
// must match.
func FromTree(key Key, tree map[string]any) (Config, error) {
	if !key.Valid() {
		return nil, fmt.Errorf("%w %q", ErrUnknownStrategy, key)
	}
	body := make(map[string]any, len(tree))
	for k, v := range tree {
		if k == "key" {
			if s, _ := v.(string); s != string(key) {
				return nil, fmt.Errorf("strategy: tree key %v does not match %s", v, key)
			}
			continue
		}
		if k == "common" {
			continue
		}
		body[k] = v
	}

	var cfg Config
	var err error
	switch key {
	case KeyMovingAverage:
		var c MovingAverage
		err = fromMap(body, &c)
		cfg = c
	case KeyBollingerBands:
		var c BollingerBands
		err = fromMap(body, &c)
		cfg = c
	case KeyRSI:
		var c RSI
		err = fromMap(body, &c)
		cfg = c
	case KeyADX:
		var c ADX
		err = fromMap(body, &c)
		cfg = c
	default:
		c := Kalman{Order: key}
		err = fromMap(body, &c)
		cfg = c
	}
	if err != nil {
		return nil, fmt.Errorf("strategy: decode %s: %w", key, err)
	}
	return cfg, nil
}

// CommonToTree converts common settings into a value tree.
func CommonToTree(c Common) (map[string]any, error) {
	tree, err := toMap(c)
	if err != nil {
		return nil, fmt.Errorf("strategy: encode common: %w", err)
	}
	return tree, nil
}

// CommonFromTree decodes common settings, rejecting unknown keys.
func CommonFromTree(tree map[string]any) (Common, error) {
	var c Common
	if err := fromMap(tree, &c); err != nil {
		return Common{}, fmt.Errorf("strategy: decode common: %w", err)
	}
	return c, nil
}

func toMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromMap(tree map[string]any, target any) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
