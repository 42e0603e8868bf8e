package model

import "strings"

// Link is a labeled URL. Identity within a list is positional.
type Link struct {
	Label string `json:"label" yaml:"label" toml:"label" edn:"label"`
	URL   string `json:"url" yaml:"url" toml:"url" edn:"url"`
}

// Trimmed returns l with surrounding whitespace removed from both fields.
func (l Link) Trimmed() Link {
	return Link{Label: strings.TrimSpace(l.Label), URL: strings.TrimSpace(l.URL)}
}

// Valid reports whether both fields are non-empty after trimming.
func (l Link) Valid() bool {
	t := l.Trimmed()
	return t.Label != "" && t.URL != ""
}

// DefaultLinks is substituted whenever a scope has no usable links.
func DefaultLinks() []Link {
	return []Link{{Label: "Example", URL: "https://example.com"}}
}

// Direction is a step move target for MoveStep.
type Direction string

const (
	DirectionUp     Direction = "up"
	DirectionDown   Direction = "down"
	DirectionTop    Direction = "top"
	DirectionBottom Direction = "bottom"
)

func ParseDirection(s string) (Direction, bool) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionUp:
		return DirectionUp, true
	case DirectionDown:
		return DirectionDown, true
	case DirectionTop:
		return DirectionTop, true
	case DirectionBottom:
		return DirectionBottom, true
	default:
		return "", false
	}
}

// CloneLinks returns a copy of links that never aliases the input.
func CloneLinks(links []Link) []Link {
	out := make([]Link, len(links))
	copy(out, links)
	return out
}

// EqualLinks compares two lists element by element.
func EqualLinks(a, b []Link) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
