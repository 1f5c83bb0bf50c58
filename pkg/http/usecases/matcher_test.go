package usecases

import (
	"testing"

	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/mapmatcher"
	"github.com/lintang-b-s/mapmatch/pkg/spatialindex"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// a ~200 m road along the equator
func equatorService(t *testing.T) *MatcherService {
	t.Helper()
	projector := geo.NewProjector(0)

	a := projector.Project(0, 0)
	mid := projector.Project(0, 0.0009)
	b := projector.Project(0, 0.0018)

	nodes := []geo.Point{a, b}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 10, "equator rd", "residential",
			[]geo.Point{a, mid, b}),
	}
	graph, err := datastructure.NewRoadGraph(nodes, edges)
	require.NoError(t, err)

	rt := spatialindex.NewRtree()
	rt.Build(graph, zap.NewNop())
	log := zap.NewNop()
	engine := mapmatcher.NewFrechetMatcher(graph, rt, log)

	return NewMatcherService(log, engine, graph, projector)
}

func TestMapMatch(t *testing.T) {
	svc := equatorService(t)

	coords := []geo.Coordinate{
		geo.NewCoordinate(0.00002, 0.0003),
		geo.NewCoordinate(-0.00002, 0.0009),
		geo.NewCoordinate(0.00001, 0.0015),
	}

	matched, path, confidence, err := svc.MapMatch(coords, false, 0, 0)
	require.NoError(t, err)

	require.Len(t, matched, 3)
	require.NotEmpty(t, path)
	require.Greater(t, confidence, 0.9)
	for i, mo := range matched {
		require.True(t, mo.Matched, "observation %d", i)
		require.EqualValues(t, 0, mo.Edge)
		require.Equal(t, "equator rd", mo.RoadName)
		// snapped back onto the road, so essentially on the equator
		require.InDelta(t, 0.0, mo.MatchedCoord.Lat, 1e-6)
	}
}

func TestMapMatchSmart(t *testing.T) {
	svc := equatorService(t)

	coords := []geo.Coordinate{
		geo.NewCoordinate(0, 0.0003),
		geo.NewCoordinate(0, 0.0012),
	}

	matched, _, confidence, err := svc.MapMatch(coords, true, 1, 0)
	require.NoError(t, err)
	require.Len(t, matched, 2)
	require.Greater(t, confidence, 0.9)
}
