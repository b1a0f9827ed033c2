package catalog

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) DSS {
	t.Helper()
	b, err := os.ReadFile("testdata/no_nibio_vips_2_0.yaml")
	require.NoError(t, err)
	d, err := DecodeYAML(b)
	require.NoError(t, err)
	return d
}

func TestDecodeYAMLAppliesDefaults(t *testing.T) {
	d := loadFixture(t)

	assert.Equal(t, "no.nibio.vips", d.ID)
	assert.Equal(t, "2.0", d.Version)
	require.Len(t, d.Models, 2)

	psil := d.Models[0]
	assert.True(t, psil.PlatformValidated)
	assert.Equal(t, []string{"timeZone"}, psil.Execution.InputSchemaCategories.Hidden)
	assert.NotNil(t, psil.Execution.InputSchemaCategories.System)
	assert.Empty(t, psil.Execution.InputSchemaCategories.System)
	assert.Equal(t, CoverageRegional, psil.ValidSpatial.Coverage)

	naer := d.Models[1]
	assert.False(t, naer.PlatformValidated)
	assert.NotNil(t, naer.Execution.InputSchemaCategories.UserInit)
	assert.Equal(t, CoverageGlobal, naer.ValidSpatial.Coverage)
	assert.NotNil(t, naer.ValidSpatial.Countries)
}

func TestClassifyCoverage(t *testing.T) {
	tests := []struct {
		name string
		vs   ValidSpatial
		want Coverage
	}{
		{"unset", ValidSpatial{}, CoverageUnset},
		{"blank document", ValidSpatial{GeoJSON: "  {} "}, CoverageUnset},
		{"null document", ValidSpatial{GeoJSON: "null"}, CoverageUnset},
		{"countries only", ValidSpatial{Countries: []string{"NOR"}}, CoverageRegional},
		{"custom polygon", ValidSpatial{GeoJSON: `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`}, CoverageRegional},
		{"sphere geometry", ValidSpatial{GeoJSON: `{"type":"Sphere"}`}, CoverageGlobal},
		{"sphere wins over countries", ValidSpatial{Countries: []string{"NOR"}, GeoJSON: `{"type":"Feature","geometry":{"type":"Sphere"}}`}, CoverageGlobal},
		{"malformed document", ValidSpatial{GeoJSON: `{"type":`}, CoverageRegional},
		{"sphere only as text", ValidSpatial{GeoJSON: `{"type":"Feature","properties":{"note":"Sphere"},"geometry":{"type":"Point","coordinates":[1,2]}}`}, CoverageRegional},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCoverage(tt.vs))
		})
	}
}

func TestKeyAndFileName(t *testing.T) {
	d := DSS{ID: "no.nibio.vips", Version: "2.0.1"}
	assert.Equal(t, "no.nibio.vips.2_0_1", d.Key())
	assert.Equal(t, "no_nibio_vips_2_0_1", d.FileName())
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	d := loadFixture(t)
	c := d.Clone()

	c.Models[0].Crops[0] = "CHANGED"
	c.Models[0].Output.ChartGroups[0].Title = "CHANGED"
	c.Models = c.Models[:1]

	assert.Equal(t, "DAUCS", d.Models[0].Crops[0])
	assert.Equal(t, "Temperature", d.Models[0].Output.ChartGroups[0].Title)
	assert.Len(t, d.Models, 2)
}

func TestValidate(t *testing.T) {
	d := loadFixture(t)
	require.NoError(t, Validate(d))

	bad := d.Clone()
	bad.Name = ""
	bad.Models[1].ID = bad.Models[0].ID
	bad.Models[0].Execution.Type = "BATCH"
	bad.Models[0].Execution.InputSchema = "{"
	err := Validate(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "unknown execution type")
	assert.Contains(t, err.Error(), "not valid JSON")
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	d := loadFixture(t)
	b, err := EncodeYAML(d)
	require.NoError(t, err)
	back, err := DecodeYAML(b)
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestCoverageOfClassifiesZeroValue(t *testing.T) {
	assert.Equal(t, CoverageRegional, CoverageOf(ValidSpatial{Countries: []string{"NOR"}}))
	assert.Equal(t, CoverageUnset, CoverageOf(ValidSpatial{}))
	assert.Equal(t, CoverageGlobal, CoverageOf(ValidSpatial{GeoJSON: `{"type":"Sphere"}`}))
	assert.Equal(t, CoverageUnset, CoverageOf(ValidSpatial{Countries: []string{"NOR"}, Coverage: CoverageUnset}), "an explicit tag wins")
	assert.Equal(t, "unclassified", Coverage(0).String())
}

func TestDecodeRiskMapsYAML(t *testing.T) {
	rm, err := DecodeRiskMapsYAML([]byte(`
risk_map_providers:
  - id: nibio
    name: NIBIO
    country: Norway
    postal_code: "1431"
    risk_maps:
      - id: SEPTREFHUM_EU
        title: Septoria Reference Humidity Model
        wms_url: https://testvips.nibio.no/cgi-bin/SEPTREFHUM_EU
        platform_validated: true
      - id: PSILARTEMP
        title: Carrot rust fly
        wms_url: https://testvips.nibio.no/cgi-bin/PSILARTEMP
  - id: empty
    name: Empty provider
`))
	require.NoError(t, err)
	require.Len(t, rm.Providers, 2)
	nibio := rm.Providers[0]
	assert.Equal(t, "1431", nibio.PostalCode)
	require.Len(t, nibio.RiskMaps, 2)
	require.NotNil(t, nibio.RiskMaps[0].PlatformValidated)
	assert.True(t, *nibio.RiskMaps[0].PlatformValidated)
	assert.Nil(t, nibio.RiskMaps[1].PlatformValidated)
	assert.NotNil(t, rm.Providers[1].RiskMaps)
	assert.Empty(t, rm.Providers[1].RiskMaps)

	empty, err := DecodeRiskMapsYAML([]byte("{}"))
	require.NoError(t, err)
	assert.NotNil(t, empty.Providers)

	_, err = DecodeRiskMapsYAML([]byte("risk_map_providers: [unterminated"))
	assert.Error(t, err)
}
