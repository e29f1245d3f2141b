package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/Connoropolous/multiblob"
	"github.com/Connoropolous/multiblob/store"
)

func storeFromConfig(ctx context.Context, filename string) (multiblob.Store, error) {
	conf, err := readConfig(filename)
	if err != nil {
		return nil, err
	}

	typ, ok := conf["type"].(string)
	if !ok {
		return nil, fmt.Errorf("config file %s missing `type` parameter", filename)
	}

	s, err := store.Create(ctx, typ, conf)
	return s, errors.Wrapf(err, "creating %s-type store", typ)
}

// readConfig parses a store configuration.
// YAML is chosen by extension;
// anything else is JSON, where comments and trailing commas are allowed.
func readConfig(filename string) (map[string]interface{}, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", filename)
	}

	var conf map[string]interface{}

	switch filepath.Ext(filename) {
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, &conf); err != nil {
			return nil, errors.Wrapf(err, "decoding config file %s", filename)
		}

	default:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.UseNumber()
		if err = dec.Decode(&conf); err != nil {
			return nil, errors.Wrapf(err, "decoding config file %s", filename)
		}
	}

	if conf == nil {
		return nil, fmt.Errorf("config file %s is empty", filename)
	}
	return conf, nil
}
