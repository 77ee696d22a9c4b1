package mapbox

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherwise/district-forecast/internal/domain"
)

// countingGeocoder records how many times the inner geocoder is hit.
type countingGeocoder struct {
	result domain.GeocodingResult
	err    error
	calls  int
}

func (c *countingGeocoder) ForwardGeocode(context.Context, string, string) (domain.GeocodingResult, error) {
	c.calls++
	return c.result, c.err
}

func dhakaResult() domain.GeocodingResult {
	return domain.GeocodingResult{
		Lat:              23.7104,
		Lon:              90.4074,
		FormattedAddress: "Dhaka, Bangladesh",
		PlaceName:        "Dhaka",
		Confidence:       0.98,
	}
}

func TestCachedGeocoder_SecondLookupIsAHit(t *testing.T) {
	inner := &countingGeocoder{result: dhakaResult()}
	cached := NewCachedGeocoder(inner, 10)

	for i := 0; i < 3; i++ {
		result, err := cached.ForwardGeocode(context.Background(), "Dhaka", "Bangladesh")
		require.NoError(t, err)
		assert.Equal(t, dhakaResult(), result)
	}
	assert.Equal(t, 1, inner.calls)
}

func TestCachedGeocoder_DistinctKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: dhakaResult()}
	cached := NewCachedGeocoder(inner, 10)

	_, err := cached.ForwardGeocode(context.Background(), "Dhaka", "Bangladesh")
	require.NoError(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "Khulna", "Bangladesh")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorsNotCached(t *testing.T) {
	inner := &countingGeocoder{err: fmt.Errorf("rate limited")}
	cached := NewCachedGeocoder(inner, 10)

	for i := 0; i < 2; i++ {
		_, err := cached.ForwardGeocode(context.Background(), "Dhaka", "Bangladesh")
		require.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultsNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10)

	for i := 0; i < 2; i++ {
		result, err := cached.ForwardGeocode(context.Background(), "Nowhere", "Bangladesh")
		require.NoError(t, err)
		assert.Zero(t, result)
	}
	assert.Equal(t, 2, inner.calls)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLRUCache(2)

	a := domain.GeocodingResult{FormattedAddress: "A"}
	b := domain.GeocodingResult{FormattedAddress: "B"}
	c := domain.GeocodingResult{FormattedAddress: "C"}

	cache.put("a", a)
	cache.put("b", b)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", c)

	_, ok = cache.get("b")
	assert.False(t, ok)
	got, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, a, got)
	got, ok = cache.get("c")
	require.True(t, ok)
	assert.Equal(t, c, got)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	cache := newLRUCache(2)

	cache.put("a", domain.GeocodingResult{FormattedAddress: "old"})
	cache.put("a", domain.GeocodingResult{FormattedAddress: "new"})

	got, ok := cache.get("a")
	require.True(t, ok)
	assert.Equal(t, "new", got.FormattedAddress)
}
