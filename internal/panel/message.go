package panel

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/pkg/errors"

	"linkbox-cli/internal/model"
)

// IntentType discriminates messages sent by a surface.
type IntentType string

const (
	IntentReady         IntentType = "ready"
	IntentAdd           IntentType = "add"
	IntentEdit          IntentType = "edit"
	IntentDelete        IntentType = "delete"
	IntentMove          IntentType = "move"
	IntentMoveTo        IntentType = "moveTo"
	IntentConfirmResult IntentType = "confirmResult"
)

// Intent is a user request coming from a surface. Index fields are -1 when the
// sender supplied something other than a JSON number.
type Intent struct {
	Type      IntentType
	Index     int
	Label     string
	URL       string
	Direction string
	FromIndex int
	ToIndex   int

	// confirmResult only
	ID        string
	Confirmed bool
}

func Ready() Intent { return Intent{Type: IntentReady, Index: -1, FromIndex: -1, ToIndex: -1} }

func AddIntent(label, url string) Intent {
	in := Ready()
	in.Type, in.Label, in.URL = IntentAdd, label, url
	return in
}

func EditIntent(index int, label, url string) Intent {
	in := Ready()
	in.Type, in.Index, in.Label, in.URL = IntentEdit, index, label, url
	return in
}

func DeleteIntent(index int) Intent {
	in := Ready()
	in.Type, in.Index = IntentDelete, index
	return in
}

func MoveIntent(index int, dir model.Direction) Intent {
	in := Ready()
	in.Type, in.Index, in.Direction = IntentMove, index, string(dir)
	return in
}

func MoveToIntent(from, to int) Intent {
	in := Ready()
	in.Type, in.FromIndex, in.ToIndex = IntentMoveTo, from, to
	return in
}

type rawIntent struct {
	Type      string          `json:"type"`
	Index     json.RawMessage `json:"index"`
	Label     json.RawMessage `json:"label"`
	URL       json.RawMessage `json:"url"`
	Direction json.RawMessage `json:"direction"`
	FromIndex json.RawMessage `json:"fromIndex"`
	ToIndex   json.RawMessage `json:"toIndex"`
	ID        string          `json:"id"`
	Confirmed bool            `json:"confirmed"`
}

func (in *Intent) UnmarshalJSON(b []byte) error {
	var raw rawIntent
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*in = Intent{
		Type:      IntentType(strings.TrimSpace(raw.Type)),
		Index:     indexValue(raw.Index),
		Label:     textValue(raw.Label),
		URL:       textValue(raw.URL),
		Direction: textValue(raw.Direction),
		FromIndex: indexValue(raw.FromIndex),
		ToIndex:   indexValue(raw.ToIndex),
		ID:        raw.ID,
		Confirmed: raw.Confirmed,
	}
	return nil
}

func (in Intent) MarshalJSON() ([]byte, error) {
	m := map[string]any{"type": in.Type}
	switch in.Type {
	case IntentAdd:
		m["label"], m["url"] = in.Label, in.URL
	case IntentEdit:
		m["index"], m["label"], m["url"] = in.Index, in.Label, in.URL
	case IntentDelete:
		m["index"] = in.Index
	case IntentMove:
		m["index"], m["direction"] = in.Index, in.Direction
	case IntentMoveTo:
		m["fromIndex"], m["toIndex"] = in.FromIndex, in.ToIndex
	case IntentConfirmResult:
		m["id"], m["confirmed"] = in.ID, in.Confirmed
	}
	return json.Marshal(m)
}

// DecodeIntent parses one surface message.
func DecodeIntent(b []byte) (Intent, error) {
	var in Intent
	if err := json.Unmarshal(b, &in); err != nil {
		return Intent{}, errors.Wrap(err, "decode intent")
	}
	if in.Type == "" {
		return Intent{}, errors.New("decode intent: missing type")
	}
	return in, nil
}

func indexValue(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || raw[0] == '{' || raw[0] == '[' {
		return -1
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return -1
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return -1
	}
	return int(f)
}

// textValue stringifies scalars. Absent, null, false and numeric zero
// become "" so they fail the required-field check.
func textValue(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil && f == 0 {
		return ""
	}
	return string(raw)
}

// NoticeType discriminates messages sent to a surface.
type NoticeType string

const (
	NoticeLinks   NoticeType = "links"
	NoticeError   NoticeType = "error"
	NoticeInfo    NoticeType = "info"
	NoticeConfirm NoticeType = "confirm"
)

type Notice struct {
	Type    NoticeType
	Links   []model.Link
	Message string
	ID      string
}

func LinksNotice(links []model.Link) Notice {
	return Notice{Type: NoticeLinks, Links: model.CloneLinks(links)}
}

func ErrorNotice(msg string) Notice { return Notice{Type: NoticeError, Message: msg} }

func InfoNotice(msg string) Notice { return Notice{Type: NoticeInfo, Message: msg} }

func ConfirmNotice(id, msg string) Notice {
	return Notice{Type: NoticeConfirm, ID: id, Message: msg}
}

func (n Notice) MarshalJSON() ([]byte, error) {
	switch n.Type {
	case NoticeLinks:
		links := n.Links
		if links == nil {
			links = []model.Link{}
		}
		return json.Marshal(struct {
			Type  NoticeType   `json:"type"`
			Links []model.Link `json:"links"`
		}{n.Type, links})
	case NoticeConfirm:
		return json.Marshal(struct {
			Type    NoticeType `json:"type"`
			ID      string     `json:"id"`
			Message string     `json:"message"`
		}{n.Type, n.ID, n.Message})
	default:
		return json.Marshal(struct {
			Type    NoticeType `json:"type"`
			Message string     `json:"message"`
		}{n.Type, n.Message})
	}
}

func (n *Notice) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type    NoticeType   `json:"type"`
		Links   []model.Link `json:"links"`
		Message string       `json:"message"`
		ID      string       `json:"id"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*n = Notice{Type: raw.Type, Links: raw.Links, Message: raw.Message, ID: raw.ID}
	return nil
}
