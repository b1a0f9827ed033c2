package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dss-api/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDSS(version string) catalog.DSS {
	return catalog.DSS{
		ID: "no.nibio.vips", Version: version, Name: "VIPS",
		Models: []catalog.Model{{
			ID: "PSILARTEMP", Name: "Carrot rust fly",
			Crops: []string{"DAUCS"}, Pests: []string{"PSILRO"},
			Execution:    catalog.Execution{Type: catalog.ExecutionOnTheFly},
			ValidSpatial: catalog.ValidSpatial{Countries: []string{"NOR"}},
		}},
	}
}

func TestFileStoreAddAndList(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	res, err := s.Add(ctx, sampleDSS("2.0"), false)
	require.NoError(t, err)
	assert.Empty(t, res.Archived)
	assert.FileExists(t, filepath.Join(dir, "no_nibio_vips_2_0.yaml"))

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "PSILARTEMP", list[0].Models[0].ID)
	assert.Equal(t, catalog.CoverageRegional, list[0].Models[0].ValidSpatial.Coverage)
}

func TestFileStoreConflict(t *testing.T) {
	s := NewFileStore(t.TempDir())
	ctx := context.Background()
	_, err := s.Add(ctx, sampleDSS("2.0"), false)
	require.NoError(t, err)

	_, err = s.Add(ctx, sampleDSS("2.0"), false)
	assert.True(t, errors.Is(err, ErrConflict))
	_, err = s.Add(ctx, sampleDSS("2.0"), true)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestFileStoreArchivesOldVersion(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()
	_, err := s.Add(ctx, sampleDSS("2.0"), false)
	require.NoError(t, err)

	res, err := s.Add(ctx, sampleDSS("2.1"), false)
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0"}, res.Archived)
	assert.FileExists(t, filepath.Join(dir, "no_nibio_vips_2_0.yaml_bak"))
	assert.NoFileExists(t, filepath.Join(dir, "no_nibio_vips_2_0.yaml"))

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2.1", list[0].Version)
}

func TestFileStoreDryRunLeavesDiskUntouched(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()
	_, err := s.Add(ctx, sampleDSS("2.0"), false)
	require.NoError(t, err)

	res, err := s.Add(ctx, sampleDSS("3.0"), true)
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.Equal(t, []string{"2.0"}, res.Archived)
	assert.FileExists(t, filepath.Join(dir, "no_nibio_vips_2_0.yaml"))
	assert.NoFileExists(t, filepath.Join(dir, "no_nibio_vips_3_0.yaml"))
}

func TestFileStoreSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: [unterminated"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	s := NewFileStore(dir)
	_, err := s.Add(context.Background(), sampleDSS("1.0"), false)
	require.NoError(t, err)

	list, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestFileStoreMissingDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing"))
	_, err := s.ListAll(context.Background())
	assert.Error(t, err)
}

func TestFileStoreRiskMaps(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	_, err := s.RiskMaps(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "risk_maps"), 0o755))
	doc := "risk_map_providers:\n  - id: nibio\n    name: NIBIO\n    risk_maps:\n      - id: SEPTREFHUM_EU\n        wms_url: https://testvips.nibio.no/cgi-bin/SEPTREFHUM_EU\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "risk_maps", "risk_maps.yaml"), []byte(doc), 0o644))
	rm, err := s.RiskMaps(ctx)
	require.NoError(t, err)
	require.Len(t, rm.Providers, 1)
	assert.Equal(t, "SEPTREFHUM_EU", rm.Providers[0].RiskMaps[0].ID)

	list, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "the risk_maps directory is not a catalogue entry")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "risk_maps", "risk_maps.yaml"), []byte("risk_map_providers: ["), 0o644))
	_, err = s.RiskMaps(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
