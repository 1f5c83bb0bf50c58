package spatialindex

import (
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/util"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Neighbor is one k-NN result: a geometric vertex of the graph and its
// squared distance to the query point.
type Neighbor struct {
	id     datastructure.GeomID
	distSq float64
}

func (n Neighbor) GetID() datastructure.GeomID {
	return n.id
}

func (n Neighbor) GetDistSq() float64 {
	return n.distSq
}

// Rtree is a read-only spatial index over every geometric vertex of a road
// graph. items carry the packed 64-bit (eid << 32) | gid identifier.
type Rtree struct {
	tr    *rtree.RTreeG[int64]
	graph *datastructure.RoadGraph
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[int64]
	return &Rtree{
		tr: &tr,
	}
}

// Build populates the index with every geometric vertex of the graph, node
// endpoints and interior polyline vertices alike.
func (rt *Rtree) Build(graph *datastructure.RoadGraph, log *zap.Logger) {
	log.Info("Building R-tree spatial index...")

	rt.graph = graph
	inserted := 0
	graph.ForGeometricVertices(func(id datastructure.GeomID, p geo.Point) {
		point := [2]float64{p.GetX(), p.GetY()}
		rt.tr.Insert(point, point, id.Pack())
		inserted++
	})

	log.Info("R-tree spatial index built.", zap.Int("vertices", inserted))
}

// Nearest up to k geometric vertices within euclidian distance maxRadius of
// p, ascending by distance. vertices at equal distance come back in
// ascending (eid, gid) order.
func (rt *Rtree) Nearest(p geo.Point, k int, maxRadius float64) ([]Neighbor, error) {
	maxDistSq := maxRadius * maxRadius
	target := [2]float64{p.GetX(), p.GetY()}

	results := make([]Neighbor, 0, k)
	var invalid error
	rt.tr.Nearby(
		rtree.BoxDist[float64, int64](target, target, nil),
		func(min, max [2]float64, data int64, dist float64) bool {
			if dist > maxDistSq {
				return false
			}
			id := datastructure.UnpackGeomID(data)
			if !rt.graph.ValidGeomID(id) {
				invalid = util.WrapErrorf(nil, util.ErrInput,
					"spatial index returned malformed geom id %s", id)
				return false
			}
			results = append(results, Neighbor{id: id, distSq: dist})
			return len(results) < k
		},
	)
	if invalid != nil {
		return nil, invalid
	}

	stabilizeEqualDistances(results)
	return results, nil
}

// Nearby returns items ascending by box distance; points at the exact same
// distance may come back in tree order, so re-sort those spans on the
// (eid, gid) ordering to keep queries deterministic.
func stabilizeEqualDistances(results []Neighbor) {
	for i := 1; i < len(results); i++ {
		j := i
		for j > 0 && results[j-1].distSq == results[j].distSq &&
			results[j].id.Less(results[j-1].id) {
			results[j-1], results[j] = results[j], results[j-1]
			j--
		}
	}
}
