package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cwbudde/spectrafit/internal/failure"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf maps a file extension onto a Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", &UnsupportedFormatError{Path: path}
	}
}

// KeyOrder records the order in which mapping keys were declared in a
// document, indexed by the dotted path of the mapping ("fitting.peaks").
// The root mapping has the empty path.
type KeyOrder map[string][]string

func (o KeyOrder) add(path []string, key string) {
	p := strings.Join(path, ".")
	if !slices.Contains(o[p], key) {
		o[p] = append(o[p], key)
	}
}

// Keys returns the keys of m in declaration order. Keys the order does not
// know about follow in natural order (see SortKeys).
func (o KeyOrder) Keys(path string, m map[string]any) []string {
	out := make([]string, 0, len(m))
	for _, k := range o[path] {
		if _, ok := m[k]; ok {
			out = append(out, k)
		}
	}

	var rest []string
	for k := range m {
		if !slices.Contains(out, k) {
			rest = append(rest, k)
		}
	}
	SortKeys(rest)

	return append(out, rest...)
}

// Load reads the configuration document at path. The extension is checked
// before the file is opened.
func Load(path string) (map[string]any, KeyOrder, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &failure.OpError{Op: "config.load", Kind: failure.KindIO, Path: path, Err: err}
	}

	doc, order, err := Decode(data, format)
	if err != nil {
		return nil, nil, &failure.OpError{Op: "config.load", Kind: failure.KindConfig, Path: path, Err: err}
	}

	return doc, order, nil
}

// Decode parses data in the given format into a generic document and
// records the declaration order of its mappings.
func Decode(data []byte, format Format) (map[string]any, KeyOrder, error) {
	var raw any
	order := KeyOrder{}

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
		if err := jsonKeyOrder(data, order); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, nil, fmt.Errorf("decode yaml: %w", err)
		}
		if node.Kind != 0 {
			if err := node.Decode(&raw); err != nil {
				return nil, nil, fmt.Errorf("decode yaml: %w", err)
			}
		}
		yamlKeyOrder(&node, nil, order)
	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, nil, fmt.Errorf("decode toml: %w", err)
		}
		if err := tomlKeyOrder(data, order); err != nil {
			return nil, nil, fmt.Errorf("decode toml: %w", err)
		}
		raw = m
	default:
		return nil, nil, fmt.Errorf("unknown format %q", format)
	}

	doc, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("document root must be a mapping, got %T", raw)
	}

	return doc, order, nil
}

// jsonKeyOrder walks the token stream. Objects nested in arrays have no
// stable path and are skipped.
func jsonKeyOrder(data []byte, order KeyOrder) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	var walk func(path []string, record bool) error
	walk = func(path []string, record bool) error {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		switch tok {
		case json.Delim('{'):
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := kt.(string)
				if record {
					order.add(path, key)
				}
				if err := walk(append(slices.Clip(path), key), record); err != nil {
					return err
				}
			}
			_, err = dec.Token()
			return err
		case json.Delim('['):
			for dec.More() {
				if err := walk(nil, false); err != nil {
					return err
				}
			}
			_, err = dec.Token()
			return err
		default:
			return nil
		}
	}

	return walk(nil, true)
}

func yamlKeyOrder(n *yaml.Node, path []string, order KeyOrder) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) > 0 {
			yamlKeyOrder(n.Content[0], path, order)
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			yamlKeyOrder(n.Alias, path, order)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if key == "<<" {
				continue
			}
			order.add(path, key)
			yamlKeyOrder(n.Content[i+1], append(slices.Clip(path), key), order)
		}
	}
}

// tomlKeyOrder replays table headers and dotted keys in document order.
// Keys below an array of tables are not recorded.
func tomlKeyOrder(data []byte, order KeyOrder) error {
	var p unstable.Parser
	p.Reset(data)

	var table []string
	inArray := false

	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table:
			table = tomlKey(expr.Key())
			inArray = false
			recordPath(order, table)
		case unstable.ArrayTable:
			table = tomlKey(expr.Key())
			inArray = true
			recordPath(order, table)
		case unstable.KeyValue:
			if !inArray {
				tomlKeyValue(expr, table, order)
			}
		}
	}

	return p.Error()
}

func tomlKeyValue(kv *unstable.Node, base []string, order KeyOrder) {
	path := append(slices.Clip(base), tomlKey(kv.Key())...)
	recordPath(order, path)

	value := kv.Value()
	if value.Kind != unstable.InlineTable {
		return
	}
	it := value.Children()
	for it.Next() {
		tomlKeyValue(it.Node(), path, order)
	}
}

func tomlKey(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// recordPath registers every segment of path under its parent.
func recordPath(order KeyOrder, path []string) {
	for i := range path {
		order.add(path[:i], path[i])
	}
}

// normalize converts decoder-specific containers into map[string]any and
// []any so that jsonpath and Validate see one shape.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
