package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recycleadmin/internal/model"
)

func TestDistanceKm(t *testing.T) {
	// 胡志明市 Bến Thành → 新山一机场 约 6.5km
	d := DistanceKm(10.7725, 106.6980, 10.8185, 106.6588)
	assert.InDelta(t, 6.6, d, 0.4)
	assert.Zero(t, DistanceKm(10, 106, 10, 106))
}

func TestNearbyFiltersAndSorts(t *testing.T) {
	all := []model.CollectionPoint{
		{ID: 1, Name: "far", Latitude: 10.8185, Longitude: 106.6588},
		{ID: 2, Name: "near", Latitude: 10.7730, Longitude: 106.6990},
		{ID: 3, Name: "here", Latitude: 10.7725, Longitude: 106.6980},
		{ID: 4, Name: "hanoi", Latitude: 21.0285, Longitude: 105.8542},
	}

	got := Nearby(all, 10.7725, 106.6980, 0)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ID)
	assert.Equal(t, 2, got[1].ID)

	got = Nearby(all, 10.7725, 106.6980, 10)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[2].ID)
}
