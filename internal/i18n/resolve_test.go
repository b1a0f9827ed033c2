package i18n

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dss-api/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) catalog.DSS {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "catalog", "testdata", "no_nibio_vips_2_0.yaml"))
	require.NoError(t, err)
	d, err := catalog.DecodeYAML(b)
	require.NoError(t, err)
	return d
}

func mapOverlay(m map[string]string) Overlay {
	return OverlayFunc(func(_ string, key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	})
}

func TestResolveLocaleNynorskScenario(t *testing.T) {
	d := fixture(t)
	ov := mapOverlay(map[string]string{
		"no.nibio.vips.2_0.models.PSILARTEMP.name": "Rotflugemodell",
	})

	got, err := ResolveLocale(d, "nn", ov)
	require.NoError(t, err)

	assert.Equal(t, "Rotflugemodell", got.Models[0].Name)
	assert.Equal(t, d.Models[0].Description, got.Models[0].Description)
	assert.Equal(t, d.Name, got.Name)
	assert.Equal(t, "Carrot rust fly temperature model", d.Models[0].Name, "input must not be mutated")
}

func TestResolveLocaleIdentity(t *testing.T) {
	d := fixture(t)
	cases := map[string]struct {
		locale string
		ov     Overlay
	}{
		"nil overlay":    {"nb", nil},
		"empty bundle":   {"nb", &Bundle{}},
		"default locale": {"default", mapOverlay(map[string]string{"no.nibio.vips.2_0.name": "X"})},
		"blank values": {"nb", mapOverlay(map[string]string{
			"no.nibio.vips.2_0.name":                   "  ",
			"no.nibio.vips.2_0.models.PSILARTEMP.name": "",
		})},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ResolveLocale(d, tc.locale, tc.ov)
			require.NoError(t, err)
			assert.Equal(t, d, got)
		})
	}
}

func TestResolveLocaleAllFields(t *testing.T) {
	d := fixture(t)
	f, err := os.Open("testdata/no.nibio.vips_nb.properties")
	require.NoError(t, err)
	defer f.Close()
	entries, err := ParseProperties(f)
	require.NoError(t, err)

	got, err := ResolveLocale(d, "nb", &Bundle{Locale: "nb", Entries: entries})
	require.NoError(t, err)

	m := got.Models[0]
	assert.Equal(t, "VIPS (norsk)", got.Name)
	assert.Equal(t, "Gulrotflue temperaturmodell", m.Name)
	assert.Equal(t, d.Models[0].Purpose, m.Purpose, "blank translation keeps default")
	assert.Equal(t, "Døgrader", m.Output.ChartHeading)
	assert.Equal(t, "No risk", m.Output.WarningStatusInterpretation[0].Explanation)
	assert.Equal(t, "Høy risiko", m.Output.WarningStatusInterpretation[1].Explanation)
	assert.Equal(t, "Protect the crop", m.Output.WarningStatusInterpretation[1].RecommendedAction)
	assert.Equal(t, "Temperatur", m.Output.ChartGroups[0].Title)
	assert.Equal(t, "Daily mean temperature", m.Output.ResultParameters[0].Title)
	assert.Equal(t, "Snitt over 24 timer", m.Output.ResultParameters[0].Description)

	var schema struct {
		Properties map[string]struct {
			Title   string `json:"title"`
			Default string `json:"default"`
			Items   []struct {
				Title    string `json:"title"`
				InfoText string `json:"infoText"`
			} `json:"items"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(m.Execution.InputSchema), &schema))
	tz := schema.Properties["timeZone"]
	assert.Equal(t, "Tidssone", tz.Title)
	assert.Equal(t, "Europe/Oslo", tz.Default, "only title/description/infoText leaves are translatable")
	item := schema.Properties["weatherData"].Items[0]
	assert.Equal(t, "Velg stasjon", item.InfoText)
	assert.Equal(t, "Station", item.Title)

	assert.Equal(t, "Temperature", d.Models[0].Output.ChartGroups[0].Title, "input must not be mutated")
}

func TestResolveLocaleMalformedSchemaIsolated(t *testing.T) {
	d := fixture(t)
	d.Models[0].Execution.InputSchema = `{"title":`
	d.Models[1].Execution.InputSchema = `{"title":"Link"}`
	ov := mapOverlay(map[string]string{
		"no.nibio.vips.2_0.models.PSILARTEMP.name":                         "Rotflugemodell",
		"no.nibio.vips.2_0.models.NAERSTADMO.name":                         "Tørråte",
		"no.nibio.vips.2_0.models.NAERSTADMO.execution.input_schema.title": "Lenke",
	})

	got, err := ResolveLocale(d, "nn", ov)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PSILARTEMP")

	assert.Equal(t, "Rotflugemodell", got.Models[0].Name)
	assert.Equal(t, `{"title":`, got.Models[0].Execution.InputSchema)
	assert.Equal(t, "Tørråte", got.Models[1].Name)
	assert.Equal(t, `{"title":"Lenke"}`, got.Models[1].Execution.InputSchema)
}

func TestResolveLocaleKeepsSchemaKeyOrder(t *testing.T) {
	d := fixture(t)
	d.Models[0].Execution.InputSchema = `{"items":[{"title":"S","subtitle":"X","infoText":"I0"}],"a.b":{"title":"dot"}}`
	ov := mapOverlay(map[string]string{
		"no.nibio.vips.2_0.models.PSILARTEMP.execution.input_schema.items.0.title":    "T0",
		"no.nibio.vips.2_0.models.PSILARTEMP.execution.input_schema.a.b.title":        "DOT",
		"no.nibio.vips.2_0.models.PSILARTEMP.execution.input_schema.items.0.infoText": "Info",
	})
	got, err := ResolveLocale(d, "nb", ov)
	require.NoError(t, err)
	assert.Equal(t, `{"items":[{"title":"T0","subtitle":"X","infoText":"Info"}],"a.b":{"title":"DOT"}}`, got.Models[0].Execution.InputSchema)
}

func TestResolveLocaleSkipsBlankChartGroupID(t *testing.T) {
	d := fixture(t)
	d.Models[0].Output.ChartGroups[0].ID = ""
	ov := mapOverlay(map[string]string{
		"no.nibio.vips.2_0.models.PSILARTEMP.output.chart_groups..title": "Tom",
	})
	got, err := ResolveLocale(d, "nb", ov)
	require.NoError(t, err)
	assert.Equal(t, "Temperature", got.Models[0].Output.ChartGroups[0].Title)
}

func TestTranslatableKeysAndCSV(t *testing.T) {
	d := fixture(t)
	rows, err := TranslatableKeys(d)
	require.NoError(t, err)

	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key
	}
	assert.IsNonDecreasing(t, keys)
	assert.Contains(t, keys, "no.nibio.vips.2_0.name")
	assert.Contains(t, keys, "no.nibio.vips.2_0.models.PSILARTEMP.output.warning_status_interpretation.1.recommended_action")
	assert.Contains(t, keys, "no.nibio.vips.2_0.models.PSILARTEMP.execution.input_schema.properties.weatherData.items.0.infoText")
	assert.NotContains(t, keys, "no.nibio.vips.2_0.models.PSILARTEMP.execution.input_schema.properties.timeZone.default")
	assert.NotContains(t, keys, "no.nibio.vips.2_0.models.NAERSTADMO.output.chart_heading")

	var sb strings.Builder
	require.NoError(t, WriteCSV(&sb, []KeyValue{{Key: "a.name", Value: `say "hi"`}, {Key: "b.name", Value: "x"}}))
	assert.Equal(t, "\"KEY\";\"default\"\n\"a.name\";\"say \"\"hi\"\"\"\n\"b.name\";\"x\"\n", sb.String())
}

func TestTranslatorUsesLocaleFallback(t *testing.T) {
	d := fixture(t)
	tr := &Translator{Cache: NewCache(PropertiesSource{Dir: "testdata"})}

	got := tr.Translate(context.Background(), d, "nb_NO")
	assert.Equal(t, "Gulrotflue temperaturmodell", got.Models[0].Name)

	same := tr.Translate(context.Background(), d, "fr")
	assert.Equal(t, d, same)

	all := tr.TranslateAll(context.Background(), []catalog.DSS{d, d}, "nn")
	require.Len(t, all, 2)
	assert.Equal(t, "Rotflugemodell", all[1].Models[0].Name)
}
