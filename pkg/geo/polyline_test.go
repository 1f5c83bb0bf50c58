package geo

import (
	"math"
	"testing"
)

func TestEncodeDecodePolyline(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(38.5, -120.2),
		NewCoordinate(40.7, -120.95),
		NewCoordinate(43.252, -126.453),
	}

	encoded := EncodePolyline(coords)
	if encoded == "" {
		t.Fatal("encoded polyline is empty")
	}

	decoded, err := DecodePolyline(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(coords) {
		t.Fatalf("decoded %d coords, want %d", len(decoded), len(coords))
	}
	for i := range coords {
		if math.Abs(decoded[i].Lat-coords[i].Lat) > 1e-5 ||
			math.Abs(decoded[i].Lon-coords[i].Lon) > 1e-5 {
			t.Errorf("coord %d = %v, want %v", i, decoded[i], coords[i])
		}
	}
}
