package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/mapmatch/pkg"
)

// Index is a dense node/edge index. -1 is reserved for the common (node)
// discriminator of GeomID.
type Index = int32

// GeomID identifies a geometric vertex of the road graph: either a graph
// node (eid == pkg.EID_COMMON, gid is the node index) or an interior vertex
// of one edge polyline (eid is the edge index, gid the polyline position).
// endpoints of an edge polyline are always represented in node form.
type GeomID struct {
	eid Index
	gid Index
}

func NewNodeGeomID(nodeID Index) GeomID {
	return GeomID{eid: pkg.EID_COMMON, gid: nodeID}
}

func NewInteriorGeomID(edgeID, gid Index) GeomID {
	return GeomID{eid: edgeID, gid: gid}
}

func (g GeomID) GetEid() Index {
	return g.eid
}

func (g GeomID) GetGid() Index {
	return g.gid
}

func (g GeomID) IsInternal() bool {
	return g.eid != pkg.EID_COMMON
}

// Less strict lexicographic ordering on (eid, gid). used for every
// deterministic tie-break in the matcher.
func (g GeomID) Less(other GeomID) bool {
	if g.eid == other.eid {
		return g.gid < other.gid
	}
	return g.eid < other.eid
}

func (g GeomID) String() string {
	if g.IsInternal() {
		return fmt.Sprintf("edge(%d, %d)", g.eid, g.gid)
	}
	return fmt.Sprintf("node(%d)", g.gid)
}

// Pack 64-bit external identifier used at the spatial-index boundary:
// (eid << 32) | gid.
func (g GeomID) Pack() int64 {
	return (int64(g.eid) << 32) | (int64(g.gid) & 0xffffffff)
}

// UnpackGeomID inverse of Pack.
func UnpackGeomID(id int64) GeomID {
	return GeomID{
		eid: Index(id >> 32),
		gid: Index(id & 0xffffffff),
	}
}
