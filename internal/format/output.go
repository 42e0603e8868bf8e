package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// Names lists the accepted --format values.
var Names = []string{"json", "edn", "yaml", "toml"}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - edn
// - yaml
// - toml (top-level value must be an object)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "edn":
		return WriteEDN(w, v, pretty)
	case "yaml", "yml":
		return WriteYAML(w, v)
	case "toml":
		return WriteTOML(w, v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}

// WriteYAML goes through JSON first so field names match the json tags.
func WriteYAML(w io.Writer, v any) error {
	x, err := jsonShape(v)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(x); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}

func WriteTOML(w io.Writer, v any) error {
	x, err := jsonShape(v)
	if err != nil {
		return err
	}
	m, ok := x.(map[string]any)
	if !ok {
		return errors.New("toml output needs an object at the top level")
	}
	if err := toml.NewEncoder(w).Encode(dropNulls(m)); err != nil {
		return errors.Wrap(err, "encode toml")
	}
	return nil
}

func jsonShape(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return nil, err
	}
	return x, nil
}

// TOML has no null.
func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			if x == nil {
				continue
			}
			out[k] = dropNulls(x)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, x := range t {
			if x == nil {
				continue
			}
			out = append(out, dropNulls(x))
		}
		return out
	default:
		return v
	}
}
