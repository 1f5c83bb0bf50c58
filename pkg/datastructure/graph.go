package datastructure

import (
	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/util"
)

// Edge is one directed road segment. geometry is the physical shape of the
// segment, geometry[0] equals the from-node coordinate and the last vertex
// equals the to-node coordinate.
type Edge struct {
	id       Index
	from     Index
	to       Index
	cost     int
	length   float64
	name     string
	roadType string
	geometry []geo.Point
}

func NewEdge(id, from, to Index, cost int, name, roadType string,
	geometry []geo.Point) Edge {
	return Edge{
		id:       id,
		from:     from,
		to:       to,
		cost:     cost,
		length:   geo.PolylineLength(geometry),
		name:     name,
		roadType: roadType,
		geometry: geometry,
	}
}

func (e *Edge) GetID() Index {
	return e.id
}

func (e *Edge) GetFrom() Index {
	return e.from
}

func (e *Edge) GetTo() Index {
	return e.to
}

func (e *Edge) GetCost() int {
	return e.cost
}

func (e *Edge) GetLength() float64 {
	return e.length
}

func (e *Edge) GetName() string {
	return e.name
}

func (e *Edge) GetRoadType() string {
	return e.roadType
}

func (e *Edge) GetGeometry() []geo.Point {
	return e.geometry
}

// GeometryID the canonical GeomID for position gid of this edge polyline.
// endpoints resolve to the node form.
func (e *Edge) GeometryID(gid Index) GeomID {
	if gid == 0 {
		return NewNodeGeomID(e.from)
	} else if int(gid) == len(e.geometry)-1 {
		return NewNodeGeomID(e.to)
	}
	return NewInteriorGeomID(e.id, gid)
}

// RoadGraph is an immutable directed multigraph. edges are owned once by a
// dense indexed slice, adjacency lists hold edge indices only.
type RoadGraph struct {
	nodes    []geo.Point
	edges    []Edge
	outgoing [][]Index
}

// NewRoadGraph builds the graph from dense node and edge slices. edge ids
// must match their position and endpoints must be valid node indices.
func NewRoadGraph(nodes []geo.Point, edges []Edge) (*RoadGraph, error) {
	outgoing := make([][]Index, len(nodes))
	for i := range edges {
		e := &edges[i]
		if e.id != Index(i) {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"edge id %d stored at index %d", e.id, i)
		}
		if int(e.from) >= len(nodes) || int(e.to) >= len(nodes) ||
			e.from < 0 || e.to < 0 {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"edge %d references unknown node (%d -> %d)", e.id, e.from, e.to)
		}
		if len(e.geometry) < 2 {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"edge %d carries %d geometry vertices, need at least 2",
				e.id, len(e.geometry))
		}
		outgoing[e.from] = append(outgoing[e.from], e.id)
	}
	return &RoadGraph{
		nodes:    nodes,
		edges:    edges,
		outgoing: outgoing,
	}, nil
}

func (g *RoadGraph) Nodes() []geo.Point {
	return g.nodes
}

func (g *RoadGraph) NumberOfNodes() int {
	return len(g.nodes)
}

func (g *RoadGraph) NumberOfEdges() int {
	return len(g.edges)
}

func (g *RoadGraph) Edge(id Index) *Edge {
	return &g.edges[id]
}

// Outgoing edge ids leaving the given node.
func (g *RoadGraph) Outgoing(nodeID Index) []Index {
	return g.outgoing[nodeID]
}

// Coord coordinate of any geometric vertex, O(1).
func (g *RoadGraph) Coord(id GeomID) geo.Point {
	if id.IsInternal() {
		return g.edges[id.GetEid()].geometry[id.GetGid()]
	}
	return g.nodes[id.GetGid()]
}

// ValidGeomID reports whether id refers to an existing geometric vertex.
// interior ids must point strictly inside their edge polyline.
func (g *RoadGraph) ValidGeomID(id GeomID) bool {
	if !id.IsInternal() {
		return id.GetGid() >= 0 && int(id.GetGid()) < len(g.nodes)
	}
	if id.GetEid() < 0 || int(id.GetEid()) >= len(g.edges) {
		return false
	}
	e := &g.edges[id.GetEid()]
	return id.GetGid() >= 1 && int(id.GetGid()) < len(e.geometry)-1
}

// Adjacent successor geometric vertices reachable from id walking forward
// along edge geometry or through node outgoing edges:
//   - interior vertex -> next polyline vertex of the same edge, the last
//     interior vertex resolves to the destination node
//   - node -> first interior vertex (or directly the far endpoint) of each
//     outgoing edge
//
// no self-loops appear in the successor list.
func (g *RoadGraph) Adjacent(id GeomID) []GeomID {
	if id.IsInternal() {
		e := &g.edges[id.GetEid()]
		next := e.GeometryID(id.GetGid() + 1)
		if next == id {
			return nil
		}
		return []GeomID{next}
	}

	out := g.outgoing[id.GetGid()]
	adj := make([]GeomID, 0, len(out))
	for _, eid := range out {
		next := g.edges[eid].GeometryID(1)
		if next == id {
			continue
		}
		adj = append(adj, next)
	}
	return adj
}

// ForGeometricVertices visits every geometric vertex of the graph: all
// nodes first, then the interior polyline vertices of every edge.
func (g *RoadGraph) ForGeometricVertices(fn func(id GeomID, p geo.Point)) {
	for nid := range g.nodes {
		fn(NewNodeGeomID(Index(nid)), g.nodes[nid])
	}
	for i := range g.edges {
		e := &g.edges[i]
		for gid := 1; gid < len(e.geometry)-1; gid++ {
			fn(NewInteriorGeomID(e.id, Index(gid)), e.geometry[gid])
		}
	}
}

// EdgeOfGeomID the owning edge of an interior vertex, or pkg.EID_COMMON for
// a node.
func EdgeOfGeomID(id GeomID) Index {
	if id.IsInternal() {
		return id.GetEid()
	}
	return pkg.EID_COMMON
}
