package datastructure

import (
	"testing"

	"github.com/lintang-b-s/mapmatch/pkg/geo"
)

// two edges out of node 0: edge 0 with one interior vertex, edge 1 without
func buildTestGraph(t *testing.T) *RoadGraph {
	t.Helper()
	nodes := []geo.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(100, 0),
		geo.NewPoint(0, 100),
	}
	edges := []Edge{
		NewEdge(0, 0, 1, 10, "main st", "residential",
			[]geo.Point{geo.NewPoint(0, 0), geo.NewPoint(50, 0), geo.NewPoint(100, 0)}),
		NewEdge(1, 0, 2, 10, "side st", "residential",
			[]geo.Point{geo.NewPoint(0, 0), geo.NewPoint(0, 100)}),
	}
	g, err := NewRoadGraph(nodes, edges)
	if err != nil {
		t.Fatalf("NewRoadGraph: %v", err)
	}
	return g
}

func TestAdjacentFromNode(t *testing.T) {
	g := buildTestGraph(t)

	adj := g.Adjacent(NewNodeGeomID(0))
	if len(adj) != 2 {
		t.Fatalf("node 0 has %d successors, want 2", len(adj))
	}
	// edge 0 steps into its first interior vertex
	if adj[0] != NewInteriorGeomID(0, 1) {
		t.Errorf("first successor = %v, want edge(0, 1)", adj[0])
	}
	// edge 1 has no interior, so directly the far endpoint
	if adj[1] != NewNodeGeomID(2) {
		t.Errorf("second successor = %v, want node(2)", adj[1])
	}
}

func TestAdjacentFromInterior(t *testing.T) {
	g := buildTestGraph(t)

	// the last interior vertex resolves to the destination node
	adj := g.Adjacent(NewInteriorGeomID(0, 1))
	if len(adj) != 1 || adj[0] != NewNodeGeomID(1) {
		t.Fatalf("interior successor = %v, want [node(1)]", adj)
	}

	// dead-end node has no successors
	if got := g.Adjacent(NewNodeGeomID(1)); len(got) != 0 {
		t.Errorf("node 1 successors = %v, want none", got)
	}
}

func TestCoord(t *testing.T) {
	g := buildTestGraph(t)

	if p := g.Coord(NewInteriorGeomID(0, 1)); !geo.PEqual(p, geo.NewPoint(50, 0)) {
		t.Errorf("interior coord = %v", p)
	}
	if p := g.Coord(NewNodeGeomID(2)); !geo.PEqual(p, geo.NewPoint(0, 100)) {
		t.Errorf("node coord = %v", p)
	}
}

func TestGeometryIDCanonicalisesEndpoints(t *testing.T) {
	g := buildTestGraph(t)
	e := g.Edge(0)

	if got := e.GeometryID(0); got != NewNodeGeomID(0) {
		t.Errorf("GeometryID(0) = %v, want node(0)", got)
	}
	if got := e.GeometryID(2); got != NewNodeGeomID(1) {
		t.Errorf("GeometryID(2) = %v, want node(1)", got)
	}
	if got := e.GeometryID(1); got != NewInteriorGeomID(0, 1) {
		t.Errorf("GeometryID(1) = %v, want edge(0, 1)", got)
	}
}

func TestValidGeomID(t *testing.T) {
	g := buildTestGraph(t)

	testCases := []struct {
		name string
		id   GeomID
		want bool
	}{
		{"node", NewNodeGeomID(0), true},
		{"node out of range", NewNodeGeomID(3), false},
		{"interior", NewInteriorGeomID(0, 1), true},
		{"interior endpoint form", NewInteriorGeomID(0, 2), false},
		{"interior of edge without interior", NewInteriorGeomID(1, 1), false},
		{"unknown edge", NewInteriorGeomID(9, 1), false},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidGeomID(tt.id); got != tt.want {
				t.Errorf("ValidGeomID(%v) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestForGeometricVertices(t *testing.T) {
	g := buildTestGraph(t)

	count := 0
	seenInterior := false
	g.ForGeometricVertices(func(id GeomID, p geo.Point) {
		count++
		if id.IsInternal() {
			seenInterior = true
		}
	})
	// 3 nodes + 1 interior vertex
	if count != 4 {
		t.Errorf("visited %d vertices, want 4", count)
	}
	if !seenInterior {
		t.Error("interior vertex never visited")
	}
}
