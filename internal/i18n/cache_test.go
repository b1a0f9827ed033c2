package i18n

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	calls   atomic.Int32
	bundles map[string]map[string]string
	err     error
}

func (s *countingSource) Load(_ context.Context, dssID, locale string) (map[string]string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.bundles[dssID+"_"+locale]
	if !ok {
		return nil, ErrBundleNotFound
	}
	return m, nil
}

func TestCacheLoadsOnceUntilInvalidated(t *testing.T) {
	src := &countingSource{bundles: map[string]map[string]string{
		"no.nibio.vips_nn": {"k": "v"},
	}}
	c := NewCache(src)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.Bundle(ctx, "no.nibio.vips", "nn")
			assert.NoError(t, err)
			v, ok := b.Get("nn", "k")
			assert.True(t, ok)
			assert.Equal(t, "v", v)
		}()
	}
	wg.Wait()
	calls := src.calls.Load()
	assert.GreaterOrEqual(t, calls, int32(1))

	_, err := c.Bundle(ctx, "no.nibio.vips", "nn")
	require.NoError(t, err)
	assert.Equal(t, calls, src.calls.Load(), "cached bundle must not reload")

	c.Invalidate()
	assert.Equal(t, 0, c.Len())
	_, err = c.Bundle(ctx, "no.nibio.vips", "nn")
	require.NoError(t, err)
	assert.Equal(t, calls+1, src.calls.Load())
}

func TestCacheMissingBundleIsEmpty(t *testing.T) {
	src := &countingSource{bundles: map[string]map[string]string{}}
	c := NewCache(src)

	b, err := c.Bundle(context.Background(), "no.nibio.vips", "nb_NO")
	require.NoError(t, err)
	assert.True(t, b.Empty())
	assert.Equal(t, int32(2), src.calls.Load(), "nb_NO then nb")

	_, err = c.Bundle(context.Background(), "no.nibio.vips", "nb_NO")
	require.NoError(t, err)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCacheSourceErrorNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("db down")}
	c := NewCache(src)

	_, err := c.Bundle(context.Background(), "x", "nn")
	require.Error(t, err)
	assert.Equal(t, 0, c.Len())

	b, err := c.Bundle(context.Background(), "x", "default")
	require.NoError(t, err)
	assert.Nil(t, b)
}
