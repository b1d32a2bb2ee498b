package points

import (
	"sort"

	"github.com/umahmood/haversine"

	"recycleadmin/internal/model"
)

// DefaultRadiusKm 附近查询的默认半径
const DefaultRadiusKm = 5.0

// Distance 回收点与查询点的距离
type Distance struct {
	model.CollectionPoint
	DistanceKm float64 `json:"distanceKm"`
}

// DistanceKm 两点球面距离（公里）
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	_, km := haversine.Distance(haversine.Coord{Lat: lat1, Lon: lng1}, haversine.Coord{Lat: lat2, Lon: lng2})
	return km
}

// Nearby 返回半径内的回收点，按距离升序；距离相同按 ID
func Nearby(all []model.CollectionPoint, lat, lng, radiusKm float64) []Distance {
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}
	out := make([]Distance, 0, len(all))
	for _, p := range all {
		d := DistanceKm(lat, lng, p.Latitude, p.Longitude)
		if d <= radiusKm {
			out = append(out, Distance{CollectionPoint: p, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].ID < out[j].ID
	})
	return out
}
