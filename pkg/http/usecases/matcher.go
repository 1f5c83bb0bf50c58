package usecases

import (
	"math"

	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"go.uber.org/zap"
)

// MatchedObservation is one observation of the request trace with its
// matched edge and, when matched, the position snapped onto that edge.
type MatchedObservation struct {
	Index        int
	Edge         datastructure.Index
	Confidence   float64
	RoadName     string
	MatchedCoord geo.Coordinate
	Matched      bool
}

type MatcherService struct {
	log       *zap.Logger
	engine    MatcherEngine
	graph     *datastructure.RoadGraph
	projector *geo.Projector
}

func NewMatcherService(log *zap.Logger, engine MatcherEngine,
	graph *datastructure.RoadGraph, projector *geo.Projector) *MatcherService {
	return &MatcherService{
		log:       log,
		engine:    engine,
		graph:     graph,
		projector: projector,
	}
}

// MapMatch matches a geographic trace and reports per-observation matched
// edges plus the encoded polyline of the snapped positions.
func (ms *MatcherService) MapMatch(coords []geo.Coordinate, smart bool,
	numRetries int, maxErrSq float64) ([]MatchedObservation, string, float64, error) {

	observations := make([]geo.Point, len(coords))
	for i, c := range coords {
		observations[i] = ms.projector.Project(c.Lat, c.Lon)
	}
	trace := datastructure.NewTrace(observations)

	var (
		out *datastructure.Output
		err error
	)
	if smart {
		out, err = ms.engine.MatchFrechetSmart(trace, numRetries)
	} else {
		if maxErrSq <= 0 {
			maxErrSq = pkg.MAX_CONSIDERED_AREA
		}
		out, err = ms.engine.MatchFrechet(trace, maxErrSq)
	}
	if err != nil {
		return nil, "", 0, err
	}

	matched := make([]MatchedObservation, out.Len())
	snapped := make([]geo.Coordinate, 0, out.Len())
	for i := 0; i < out.Len(); i++ {
		mo := MatchedObservation{
			Index:      i,
			Edge:       out.Edge(i),
			Confidence: out.Confidence(i),
		}
		if out.Edge(i) != pkg.EID_COMMON {
			edge := ms.graph.Edge(out.Edge(i))
			mo.RoadName = edge.GetName()
			mo.MatchedCoord = ms.snapToEdge(coords[i], observations[i], edge)
			mo.Matched = true
			snapped = append(snapped, mo.MatchedCoord)
		}
		matched[i] = mo
	}

	path := geo.EncodePolyline(snapped)
	aggregate := 0.0
	if out.Len() > 0 {
		aggregate = out.SumConfidence() / float64(out.Len())
	}
	return matched, path, aggregate, nil
}

// snapToEdge projects the observation onto the nearest segment of the edge
// polyline. segment selection runs in the planar system, the final
// projection on the sphere.
func (ms *MatcherService) snapToEdge(obs geo.Coordinate, obsPlanar geo.Point,
	edge *datastructure.Edge) geo.Coordinate {

	geometry := edge.GetGeometry()
	bestSeg := 0
	bestDist := math.Inf(1)
	for i := 1; i < len(geometry); i++ {
		d := geo.PointToSegmentDistSq(obsPlanar, geometry[i-1], geometry[i])
		if d < bestDist {
			bestDist = d
			bestSeg = i
		}
	}

	aLat, aLon := ms.projector.Unproject(geometry[bestSeg-1])
	bLat, bLon := ms.projector.Unproject(geometry[bestSeg])
	return geo.ProjectPointToLineCoord(
		geo.NewCoordinate(aLat, aLon),
		geo.NewCoordinate(bLat, bLon),
		obs,
	)
}
