package format

import (
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"olympos.io/encoding/edn"
)

// WriteEDN writes v as EDN. Object keys from json tags become keywords.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	x, err := jsonShape(v)
	if err != nil {
		return err
	}

	var b []byte
	if pretty {
		b, err = edn.MarshalIndent(ednValue(x), "", "  ")
	} else {
		b, err = edn.Marshal(ednValue(x))
	}
	if err != nil {
		return errors.Wrap(err, "encode edn")
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// ednValue maps a JSON shape onto edn-native types. Integral numbers
// print without a fraction so positions read as ints.
func ednValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[edn.Keyword]any, len(t))
		for k, x := range t {
			out[ednKeyword(k)] = ednValue(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = ednValue(x)
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}

func ednKeyword(k string) edn.Keyword {
	if k == "" {
		return edn.Keyword("_")
	}
	return edn.Keyword(strings.Map(func(r rune) rune {
		if r == ' ' || r == ',' || r == ':' {
			return '-'
		}
		return r
	}, k))
}
