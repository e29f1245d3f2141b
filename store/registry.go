// Package store holds a registry of blob store backends,
// so that a store can be built from configuration.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/codec/cid"
)

// Factory builds a store from its configuration map.
type Factory func(context.Context, map[string]interface{}) (multiblob.Store, error)

var registry = make(map[string]Factory)

// Register makes a backend available under key.
// Backends call it from init.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create builds a store of the registered type key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (multiblob.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry (known: %s)", key, strings.Join(Keys(), ", "))
	}
	return f(ctx, conf)
}

// Keys lists the registered backend types.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Nested builds the store described by conf["nested"],
// for backends that wrap another store.
func Nested(ctx context.Context, conf map[string]interface{}) (multiblob.Store, error) {
	nested, ok := conf["nested"].(map[string]interface{})
	if !ok {
		return nil, errors.New(`missing "nested" parameter`)
	}
	nestedType, ok := nested["type"].(string)
	if !ok {
		return nil, errors.New(`"nested" parameter missing "type"`)
	}
	s, err := Create(ctx, nestedType, nested)
	return s, errors.Wrap(err, "creating nested store")
}

// Alg reads the optional "alg" parameter,
// defaulting to multiblob.DefaultAlg.
// The older spelling "hash" is accepted too.
func Alg(conf map[string]interface{}) (string, error) {
	for _, key := range []string{"alg", "hash"} {
		v, ok := conf[key]
		if !ok {
			continue
		}
		alg, ok := v.(string)
		if !ok {
			return "", fmt.Errorf(`"%s" parameter is a %T, not a string`, key, v)
		}
		if _, err := multiblob.NewHash(alg); err != nil {
			return "", err
		}
		return alg, nil
	}
	return multiblob.DefaultAlg, nil
}

// Codec reads the optional "codec" parameter:
// "sigil" (the default) or "cid".
func Codec(conf map[string]interface{}) (multiblob.Codec, error) {
	v, ok := conf["codec"]
	if !ok {
		return multiblob.DefaultCodec, nil
	}
	switch v {
	case "sigil":
		return multiblob.DefaultCodec, nil
	case "cid":
		return cid.Codec{}, nil
	default:
		return nil, fmt.Errorf(`unknown codec "%v"`, v)
	}
}

// Int reads an integer parameter,
// accepting the numeric types produced by the JSON and YAML decoders.
func Int(conf map[string]interface{}, key string) (int, bool) {
	switch v := conf[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}
