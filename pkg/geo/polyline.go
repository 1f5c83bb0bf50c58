package geo

import (
	"github.com/twpayne/go-polyline"
)

// EncodePolyline google encoded polyline of the given coordinates.
func EncodePolyline(coords []Coordinate) string {
	latLons := make([][]float64, len(coords))
	for i, c := range coords {
		latLons[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(latLons))
}

// DecodePolyline inverse of EncodePolyline.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	latLons, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(latLons))
	for i, ll := range latLons {
		coords[i] = NewCoordinate(ll[0], ll[1])
	}
	return coords, nil
}
