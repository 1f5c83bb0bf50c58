package geo

import (
	"math"

	"github.com/lintang-b-s/mapmatch/pkg/util"
)

const (
	earthRadiusMeter = 6371000.0
)

// Projector converts geographic coordinates to the planar metric system the
// matcher works in. local equirectangular projection anchored at a
// reference latitude, accurate for city-scale maps.
type Projector struct {
	refLatRad float64
	cosRefLat float64
}

func NewProjector(refLat float64) *Projector {
	refLatRad := util.DegreeToRadians(refLat)
	return &Projector{
		refLatRad: refLatRad,
		cosRefLat: math.Cos(refLatRad),
	}
}

// Project lat/lon in degrees to planar meters.
func (pr *Projector) Project(lat, lon float64) Point {
	x := earthRadiusMeter * util.DegreeToRadians(lon) * pr.cosRefLat
	y := earthRadiusMeter * util.DegreeToRadians(lat)
	return NewPoint(x, y)
}

// Unproject planar meters back to lat/lon in degrees.
func (pr *Projector) Unproject(p Point) (float64, float64) {
	lat := util.RadiansToDegree(p.GetY() / earthRadiusMeter)
	lon := util.RadiansToDegree(p.GetX() / (earthRadiusMeter * pr.cosRefLat))
	return lat, lon
}

// CalculateHaversineDistance. haversine distance in meters.
func CalculateHaversineDistance(latOne, longOne, latTwo, longTwo float64) float64 {
	latOne = util.DegreeToRadians(latOne)
	longOne = util.DegreeToRadians(longOne)
	latTwo = util.DegreeToRadians(latTwo)
	longTwo = util.DegreeToRadians(longTwo)

	a := havFunction(latOne-latTwo) + math.Cos(latOne)*math.Cos(latTwo)*havFunction(longOne-longTwo)
	c := 2.0 * math.Asin(math.Sqrt(a))
	return earthRadiusMeter * c
}

func havFunction(angleRad float64) float64 {
	return (1 - math.Cos(angleRad)) / 2.0
}
