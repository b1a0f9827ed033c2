package jsontree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenUnflattenRoundTrip(t *testing.T) {
	docs := []string{
		`{"title":"Input","type":"object","properties":{"timeZone":{"type":"string","title":"Time zone","default":"Europe/Oslo"}}}`,
		`{"a":[{"b":1},{"c":[true,false,null]}],"d":{},"e":[],"f":1.000000000000000001}`,
		`{"a.b":{"c":"key with dot"},"n":[[1,2],[3]]}`,
		`{"items":[{"title":"S","subtitle":"X","infoText":"I"}],"a.b":{"title":"dot"},"<b>":"&"}`,
		`[1,"two",{"three":3}]`,
		`"scalar"`,
		`null`,
	}
	for _, src := range docs {
		t.Run(src, func(t *testing.T) {
			doc, err := Parse(src)
			require.NoError(t, err)
			back, err := Unflatten(Flatten(doc))
			require.NoError(t, err)
			assert.Equal(t, doc, back)

			out, err := Encode(back)
			require.NoError(t, err)
			assert.Equal(t, src, out, "encoding keeps source key order")
		})
	}
}

func TestFlattenPaths(t *testing.T) {
	doc, err := Parse(`{"properties":{"weatherData":{"items":[{"title":"Station","infoText":"Pick"}]}},"title":"Input"}`)
	require.NoError(t, err)

	got := map[string]any{}
	for _, l := range Flatten(doc) {
		got[l.Path.Dotted()] = l.Value
	}
	assert.Equal(t, map[string]any{
		"properties.weatherData.items.0.title":    "Station",
		"properties.weatherData.items.0.infoText": "Pick",
		"title": "Input",
	}, got)
}

func TestPathKeepsDottedKeysDistinct(t *testing.T) {
	doc, err := Parse(`{"a.b":"x","a":{"b":"y"}}`)
	require.NoError(t, err)
	leaves := Flatten(doc)
	require.Len(t, leaves, 2)
	assert.Equal(t, Path{Key("a.b")}, leaves[0].Path)
	assert.Equal(t, Path{Key("a"), Key("b")}, leaves[1].Path)
	assert.Equal(t, "b", leaves[1].Path.Last())
}

func TestUnflattenConflict(t *testing.T) {
	_, err := Unflatten([]Leaf{
		{Path: Path{Key("a"), Key("b")}, Value: "x"},
		{Path: Path{Key("a"), Index(0)}, Value: "y"},
	})
	assert.Error(t, err)
}

func TestParseRejectsMalformed(t *testing.T) {
	_, err := Parse(`{"title":`)
	assert.Error(t, err)
	_, err = Parse(`{} {}`)
	assert.Error(t, err)
}

func TestNumbersKeepPrecision(t *testing.T) {
	doc, err := Parse(`{"n":12345678901234567890}`)
	require.NoError(t, err)
	n, ok := doc.(*Object).Get("n")
	require.True(t, ok)
	assert.Equal(t, json.Number("12345678901234567890"), n)
}

func TestFlattenFollowsSourceOrder(t *testing.T) {
	doc, err := Parse(`{"z":1,"a":{"y":2,"b":3},"m":[{"k":4,"c":5}]}`)
	require.NoError(t, err)
	var got []string
	for _, l := range Flatten(doc) {
		got = append(got, l.Path.Dotted())
	}
	assert.Equal(t, []string{"z", "a.y", "a.b", "m.0.k", "m.0.c"}, got)
}

func TestObjectSetKeepsPosition(t *testing.T) {
	doc, err := Parse(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)
	obj := doc.(*Object)
	require.Equal(t, 2, obj.Len())
	obj.Set("c", "new")
	out, err := Encode(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"b":2,"c":"new"}`, out)
}
