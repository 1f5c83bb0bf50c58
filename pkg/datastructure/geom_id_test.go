package datastructure

import (
	"testing"

	"github.com/lintang-b-s/mapmatch/pkg"
)

func TestGeomIDOrdering(t *testing.T) {
	testCases := []struct {
		name string
		a    GeomID
		b    GeomID
		want bool
	}{
		{
			name: "node before interior",
			a:    NewNodeGeomID(1000),
			b:    NewInteriorGeomID(0, 1),
			want: true,
		},
		{
			name: "same edge by gid",
			a:    NewInteriorGeomID(3, 1),
			b:    NewInteriorGeomID(3, 2),
			want: true,
		},
		{
			name: "different edges",
			a:    NewInteriorGeomID(2, 9),
			b:    NewInteriorGeomID(3, 1),
			want: true,
		},
		{
			name: "equal is not less",
			a:    NewInteriorGeomID(2, 9),
			b:    NewInteriorGeomID(2, 9),
			want: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Less(tt.b); got != tt.want {
				t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestGeomIDPackRoundtrip(t *testing.T) {
	testCases := []GeomID{
		NewNodeGeomID(0),
		NewNodeGeomID(123456),
		NewInteriorGeomID(0, 1),
		NewInteriorGeomID(2147483647, 42),
		NewInteriorGeomID(7, 4294967295>>1),
	}

	for _, id := range testCases {
		packed := id.Pack()
		got := UnpackGeomID(packed)
		if got != id {
			t.Errorf("roundtrip of %v via %#x gave %v", id, packed, got)
		}
	}
}

func TestGeomIDPackLayout(t *testing.T) {
	id := NewInteriorGeomID(5, 9)
	packed := id.Pack()
	if packed>>32 != 5 {
		t.Errorf("edge part = %d, want 5", packed>>32)
	}
	if packed&0xffffffff != 9 {
		t.Errorf("geom part = %d, want 9", packed&0xffffffff)
	}

	node := NewNodeGeomID(9)
	if UnpackGeomID(node.Pack()).GetEid() != pkg.EID_COMMON {
		t.Error("node form must keep the common discriminator through packing")
	}
}
