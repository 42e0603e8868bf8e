package panel

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"linkbox-cli/internal/model"
)

func TestDecodeIntent(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
	}{
		{`{"type":"ready"}`, Ready()},
		{`{"type":"add","label":" Docs ","url":"https://docs.example.com"}`, AddIntent(" Docs ", "https://docs.example.com")},
		{`{"type":"edit","index":2,"label":"X","url":"https://x.example"}`, EditIntent(2, "X", "https://x.example")},
		{`{"type":"delete","index":"2"}`, DeleteIntent(-1)},
		{`{"type":"delete","index":1.5}`, DeleteIntent(-1)},
		{`{"type":"delete"}`, DeleteIntent(-1)},
		{`{"type":"move","index":0,"direction":"down"}`, MoveIntent(0, model.DirectionDown)},
		{`{"type":"moveTo","fromIndex":3,"toIndex":0}`, MoveToIntent(3, 0)},
		{`{"type":"moveTo","fromIndex":null,"toIndex":[1]}`, MoveToIntent(-1, -1)},
	}
	for _, tc := range cases {
		got, err := DecodeIntent([]byte(tc.in))
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestDecodeIntent_ScalarLabelsAreStringified(t *testing.T) {
	got, err := DecodeIntent([]byte(`{"type":"add","label":42,"url":null}`))
	require.NoError(t, err)
	require.Equal(t, "42", got.Label)
	require.Equal(t, "", got.URL)
}

func TestDecodeIntent_ZeroLabelIsEmpty(t *testing.T) {
	for _, zero := range []string{`0`, `0.0`, `-0`, `0e3`} {
		got, err := DecodeIntent([]byte(`{"type":"add","label":` + zero + `,"url":"https://x.example"}`))
		require.NoError(t, err, zero)
		require.Equal(t, "", got.Label, zero)
	}
	got, err := DecodeIntent([]byte(`{"type":"add","label":-1.5,"url":0}`))
	require.NoError(t, err)
	require.Equal(t, "-1.5", got.Label)
	require.Equal(t, "", got.URL)
}

func TestDecodeIntent_Errors(t *testing.T) {
	_, err := DecodeIntent([]byte(`{"index":1}`))
	require.Error(t, err)
	_, err = DecodeIntent([]byte(`not json`))
	require.Error(t, err)
}

func TestIntent_RoundTrip(t *testing.T) {
	for _, in := range []Intent{
		AddIntent("a", "https://a.example"),
		EditIntent(1, "b", "https://b.example"),
		DeleteIntent(0),
		MoveIntent(2, model.DirectionTop),
		MoveToIntent(0, 3),
	} {
		b, err := json.Marshal(in)
		require.NoError(t, err)
		got, err := DecodeIntent(b)
		require.NoError(t, err)
		require.Equal(t, in, got)
	}
}

func TestNotice_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(LinksNotice(nil))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"links","links":[]}`, string(b))

	b, err = json.Marshal(LinksNotice([]model.Link{{Label: "A", URL: "https://a.example"}}))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"links","links":[{"label":"A","url":"https://a.example"}]}`, string(b))

	b, err = json.Marshal(ErrorNotice("URL is invalid."))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"error","message":"URL is invalid."}`, string(b))

	b, err = json.Marshal(ConfirmNotice("7", `Delete "A"?`))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"confirm","id":"7","message":"Delete \"A\"?"}`, string(b))

	var n Notice
	require.NoError(t, json.Unmarshal([]byte(`{"type":"info","message":"Delete canceled."}`), &n))
	require.Equal(t, InfoNotice("Delete canceled."), n)
}
