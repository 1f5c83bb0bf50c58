package mapmatcher

import (
	"testing"

	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/spatialindex"
	"github.com/lintang-b-s/mapmatch/pkg/util"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMatcher(t *testing.T, nodes []geo.Point, edges []datastructure.Edge) *FrechetMatcher {
	t.Helper()
	graph, err := datastructure.NewRoadGraph(nodes, edges)
	require.NoError(t, err)
	rt := spatialindex.NewRtree()
	rt.Build(graph, zap.NewNop())
	return NewFrechetMatcher(graph, rt, zap.NewNop())
}

// one straight edge with interior vertices every 25 m
func straightRoadMatcher(t *testing.T) *FrechetMatcher {
	t.Helper()
	nodes := []geo.Point{geo.NewPoint(0, 0), geo.NewPoint(100, 0)}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 10, "main st", "residential",
			[]geo.Point{geo.NewPoint(0, 0), geo.NewPoint(25, 0), geo.NewPoint(50, 0),
				geo.NewPoint(75, 0), geo.NewPoint(100, 0)}),
	}
	return newMatcher(t, nodes, edges)
}

// fork at the origin: edge 0 east to (100,0), edge 1 north-east to (100,100)
func forkMatcher(t *testing.T) *FrechetMatcher {
	t.Helper()
	nodes := []geo.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(100, 0),
		geo.NewPoint(100, 100),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 10, "east st", "residential",
			[]geo.Point{geo.NewPoint(0, 0), geo.NewPoint(50, 0), geo.NewPoint(100, 0)}),
		datastructure.NewEdge(1, 0, 2, 10, "diagonal st", "residential",
			[]geo.Point{geo.NewPoint(0, 0), geo.NewPoint(50, 50), geo.NewPoint(100, 100)}),
	}
	return newMatcher(t, nodes, edges)
}

// left turn: edge 0 east along y=0, edge 1 north along x=100
func leftTurnMatcher(t *testing.T) *FrechetMatcher {
	t.Helper()
	nodes := []geo.Point{
		geo.NewPoint(0, 0),
		geo.NewPoint(100, 0),
		geo.NewPoint(100, 100),
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 10, "east st", "residential",
			[]geo.Point{geo.NewPoint(0, 0), geo.NewPoint(50, 0), geo.NewPoint(100, 0)}),
		datastructure.NewEdge(1, 1, 2, 10, "north st", "residential",
			[]geo.Point{geo.NewPoint(100, 0), geo.NewPoint(100, 50), geo.NewPoint(100, 100)}),
	}
	return newMatcher(t, nodes, edges)
}

func traceOf(points ...geo.Point) *datastructure.Trace {
	return datastructure.NewTrace(points)
}

func TestMatchFrechetStraightLine(t *testing.T) {
	fm := straightRoadMatcher(t)

	out, err := fm.MatchFrechet(traceOf(
		geo.NewPoint(10, 1),
		geo.NewPoint(50, -1),
		geo.NewPoint(90, 0.5),
	), pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	require.Equal(t, 3, out.Len())
	for i := 0; i < out.Len(); i++ {
		require.EqualValues(t, 0, out.Edge(i), "observation %d", i)
		require.GreaterOrEqual(t, out.Confidence(i), 0.9, "observation %d", i)
	}
}

func TestMatchFrechetOnPolylineFullConfidence(t *testing.T) {
	fm := straightRoadMatcher(t)

	out, err := fm.MatchFrechet(traceOf(
		geo.NewPoint(25, 0),
		geo.NewPoint(50, 0),
		geo.NewPoint(75, 0),
	), pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	for i := 0; i < out.Len(); i++ {
		require.EqualValues(t, 0, out.Edge(i))
		require.Equal(t, 1.0, out.Confidence(i))
	}
}

func TestMatchFrechetFork(t *testing.T) {
	fm := forkMatcher(t)

	out, err := fm.MatchFrechet(traceOf(
		geo.NewPoint(10, 0),
		geo.NewPoint(50, 0),
		geo.NewPoint(90, 5),
	), pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	for i := 0; i < out.Len(); i++ {
		require.EqualValues(t, 0, out.Edge(i), "observation %d", i)
	}
}

func TestMatchFrechetLeftTurn(t *testing.T) {
	fm := leftTurnMatcher(t)

	out, err := fm.MatchFrechet(traceOf(
		geo.NewPoint(10, 0),
		geo.NewPoint(50, 0),
		geo.NewPoint(100, 50),
		geo.NewPoint(100, 90),
	), pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	require.EqualValues(t, 0, out.Edge(0))
	require.EqualValues(t, 0, out.Edge(1))
	require.EqualValues(t, 1, out.Edge(2))
	require.EqualValues(t, 1, out.Edge(3))

	// approaching the turn both edges explain the trace almost equally well
	require.Less(t, out.Confidence(2), 0.5)
	require.Greater(t, out.Confidence(1), 0.7)
}

func TestMatchFrechetOffMapObservation(t *testing.T) {
	fm := straightRoadMatcher(t)

	out, err := fm.MatchFrechet(traceOf(
		geo.NewPoint(10, 0),
		geo.NewPoint(1000, 1000),
		geo.NewPoint(90, 0),
	), 150*150)
	require.NoError(t, err)

	require.EqualValues(t, 0, out.Edge(0))
	require.EqualValues(t, pkg.EID_COMMON, out.Edge(1))
	require.Equal(t, 0.0, out.Confidence(1))
	require.EqualValues(t, 0, out.Edge(2))
}

func TestMatchFrechetSingleObservation(t *testing.T) {
	fm := straightRoadMatcher(t)

	out, err := fm.MatchFrechet(traceOf(geo.NewPoint(26, 2)), pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	require.EqualValues(t, 0, out.Edge(0))
}

func TestMatchFrechetIdenticalObservations(t *testing.T) {
	fm := straightRoadMatcher(t)

	out, err := fm.MatchFrechet(traceOf(
		geo.NewPoint(50, 1),
		geo.NewPoint(50, 1),
	), pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	require.Equal(t, out.Edge(0), out.Edge(1))
	require.Equal(t, out.Confidence(0), out.Confidence(1))
}

func TestMatchFrechetDeterministic(t *testing.T) {
	fm := leftTurnMatcher(t)
	trace := traceOf(
		geo.NewPoint(10, 0),
		geo.NewPoint(50, 0),
		geo.NewPoint(100, 50),
		geo.NewPoint(100, 90),
	)

	first, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)
	second, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	require.Equal(t, first.Estimates(), second.Estimates())
}

func TestMatchFrechetInvariants(t *testing.T) {
	fm := leftTurnMatcher(t)
	trace := traceOf(
		geo.NewPoint(10, 3),
		geo.NewPoint(60, -2),
		geo.NewPoint(98, 40),
		geo.NewPoint(500, 500),
		geo.NewPoint(101, 95),
	)

	out, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	require.Equal(t, trace.Len(), out.Len())
	for i := 0; i < out.Len(); i++ {
		edge := out.Edge(i)
		require.True(t, edge == pkg.EID_COMMON ||
			(edge >= 0 && int(edge) < fm.graph.NumberOfEdges()),
			"observation %d has edge %d", i, edge)
		require.GreaterOrEqual(t, out.Confidence(i), 0.0)
		require.LessOrEqual(t, out.Confidence(i), 1.0)
	}
}

func TestMatchFrechetEmptyTrace(t *testing.T) {
	fm := straightRoadMatcher(t)

	_, err := fm.MatchFrechet(datastructure.NewTrace(nil), pkg.MAX_CONSIDERED_AREA)
	require.Error(t, err)
	require.ErrorIs(t, util.ErrorCode(err), util.ErrInput)
}

func TestMatchFrechetEdgelessGraph(t *testing.T) {
	graph, err := datastructure.NewRoadGraph([]geo.Point{geo.NewPoint(0, 0)}, nil)
	require.NoError(t, err)
	rt := spatialindex.NewRtree()
	rt.Build(graph, zap.NewNop())
	fm := NewFrechetMatcher(graph, rt, zap.NewNop())

	_, err = fm.MatchFrechet(traceOf(geo.NewPoint(0, 0)), pkg.MAX_CONSIDERED_AREA)
	require.Error(t, err)
	require.ErrorIs(t, util.ErrorCode(err), util.ErrInput)
}

func TestMatchBatchKeepsTraceOrder(t *testing.T) {
	fm := straightRoadMatcher(t)

	traces := []*datastructure.Trace{
		traceOf(geo.NewPoint(10, 1), geo.NewPoint(50, -1)),
		traceOf(geo.NewPoint(75, 2)),
		traceOf(geo.NewPoint(30, 0), geo.NewPoint(60, 0), geo.NewPoint(90, 0)),
	}

	outs, errs := fm.MatchBatch(traces, pkg.MAX_CONSIDERED_AREA, 2)
	require.Len(t, outs, 3)
	for i, out := range outs {
		require.NoError(t, errs[i])
		require.Equal(t, traces[i].Len(), out.Len(), "trace %d", i)
	}
}
