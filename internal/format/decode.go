package format

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// FromPath maps a file extension to a format name. Unknown extensions read as json.
func FromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	default:
		return "json"
	}
}

// Decode reads json, yaml or toml into v. EDN is write-only.
func Decode(r io.Reader, format string, v any) error {
	var err error
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		err = json.NewDecoder(r).Decode(v)
	case "yaml", "yml":
		err = yaml.NewDecoder(r).Decode(v)
	case "toml":
		err = toml.NewDecoder(r).Decode(v)
	default:
		return errors.Errorf("cannot read format: %s", format)
	}
	return errors.Wrapf(err, "decode %s", format)
}
