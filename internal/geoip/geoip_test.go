package geoip

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLocator struct {
	lat, lon float64
	err      error
}

func (f fixedLocator) Locate(ip string) (float64, float64, error) {
	if _, err := parseIP(ip); err != nil {
		return 0, 0, err
	}
	return f.lat, f.lon, f.err
}

func TestChain(t *testing.T) {
	c := Chain{nil, fixedLocator{err: ErrNotFound}, fixedLocator{lat: 59.66, lon: 10.78}}

	lat, lon, err := c.Locate("193.156.90.1")
	require.NoError(t, err)
	assert.Equal(t, 59.66, lat)
	assert.Equal(t, 10.78, lon)

	_, _, err = c.Locate("not-an-ip")
	assert.ErrorIs(t, err, ErrInvalidIP)

	boom := errors.New("boom")
	_, _, err = Chain{fixedLocator{err: boom}}.Locate("10.0.0.1")
	assert.ErrorIs(t, err, boom)

	_, _, err = Chain{}.Locate("10.0.0.1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamic(t *testing.T) {
	var d Dynamic
	assert.False(t, d.Ready())
	_, _, err := d.Locate("10.0.0.1")
	assert.ErrorIs(t, err, ErrNoDatabase)

	assert.Nil(t, d.Set(fixedLocator{lat: 1, lon: 2}))
	assert.True(t, d.Ready())
	lat, lon, err := d.Locate("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 2.0, lon)
}

func TestOpen(t *testing.T) {
	_, err := Open("", "geoip2")
	assert.ErrorIs(t, err, ErrNoDatabase)

	missing := filepath.Join(t.TempDir(), "missing.mmdb")
	_, err = Open(missing, "geoip2")
	assert.Error(t, err)
	_, err = Open(missing, "mmdb")
	assert.Error(t, err)
	_, err = Open(missing, "ip2region")
	assert.Error(t, err)
}

type closingLocator struct {
	fixedLocator
	closed *int
}

func (c closingLocator) Close() error {
	*c.closed++
	return nil
}

func TestDynamicReload(t *testing.T) {
	closed, opened := 0, 0
	fail := false
	d := &Dynamic{Open: func() (Locator, error) {
		if fail {
			return nil, errors.New("corrupt database")
		}
		opened++
		return closingLocator{fixedLocator{lat: float64(opened)}, &closed}, nil
	}}

	require.NoError(t, d.Reload())
	lat, _, err := d.Locate("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, 1.0, lat)
	assert.Equal(t, 0, closed)

	require.NoError(t, d.Reload())
	lat, _, _ = d.Locate("10.0.0.1")
	assert.Equal(t, 2.0, lat)
	assert.Equal(t, 1, closed, "the replaced reader is closed")

	fail = true
	assert.Error(t, d.Reload())
	lat, _, _ = d.Locate("10.0.0.1")
	assert.Equal(t, 2.0, lat, "a failed reload keeps the current reader")

	assert.ErrorIs(t, (&Dynamic{}).Reload(), ErrNoDatabase)
}

func TestOpenChain(t *testing.T) {
	_, err := OpenChain(Source{}, Source{Kind: "mmdb"})
	assert.ErrorIs(t, err, ErrNoDatabase)

	_, err = OpenChain(Source{Path: filepath.Join(t.TempDir(), "missing.mmdb"), Kind: "mmdb"})
	assert.Error(t, err)

	closed := 0
	c := Chain{closingLocator{closed: &closed}, fixedLocator{}, closingLocator{closed: &closed}}
	require.NoError(t, c.Close())
	assert.Equal(t, 2, closed)
}
