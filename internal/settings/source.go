package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/magiconair/properties"
	"gopkg.in/yaml.v3"
)

func loadDefaults(fsys fs.FS, name string) (map[string]string, error) {
	if fsys == nil {
		return nil, fmt.Errorf("%w: no resource configured", ErrDefaultsUnavailable)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDefaultsUnavailable, name, err)
	}
	values, err := parseProperties(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrDefaultsUnavailable, name, err)
	}
	return values, nil
}

// loadOverride reads an override file. YAML and JSON documents are flattened
// to dotted keys; any other extension is read as a properties file.
func loadOverride(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrOverrideUnavailable, path, err)
	}

	var values map[string]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		values, err = parseYAML(data)
	case ".json":
		values, err = parseJSON(data)
	default:
		values, err = parseProperties(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrOverrideUnavailable, path, err)
	}
	return values, nil
}

func parseProperties(data []byte) (map[string]string, error) {
	loader := properties.Loader{
		Encoding:         properties.UTF8,
		DisableExpansion: true,
	}
	p, err := loader.LoadBytes(data)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}

func parseYAML(data []byte) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten(out, "", doc)
	return out, nil
}

func parseJSON(data []byte) (map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten(out, "", doc)
	return out, nil
}

// flatten writes nested documents as dotted keys: {a: {b: 1}} becomes a.b=1.
// Sequences of scalars are joined with commas.
func flatten(out map[string]string, prefix string, node any) {
	switch v := node.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(out, joinKey(prefix, k), v[k])
		}
	case map[any]any:
		// YAML mappings with non-string keys, e.g. numeric status codes.
		keyed := make(map[string]any, len(v))
		for k, item := range v {
			keyed[fmt.Sprint(k)] = item
		}
		flatten(out, prefix, keyed)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, scalarString(item))
		}
		out[prefix] = strings.Join(parts, ",")
	default:
		if prefix != "" {
			out[prefix] = scalarString(v)
		}
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
