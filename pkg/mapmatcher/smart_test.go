package mapmatcher

import (
	"testing"

	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/stretchr/testify/require"
)

// long straight road with vertices every 50 m
func longRoadMatcher(t *testing.T) *FrechetMatcher {
	t.Helper()
	nodes := []geo.Point{geo.NewPoint(0, 0), geo.NewPoint(400, 0)}
	geometry := make([]geo.Point, 0, 9)
	for x := 0.0; x <= 400; x += 50 {
		geometry = append(geometry, geo.NewPoint(x, 0))
	}
	edges := []datastructure.Edge{
		datastructure.NewEdge(0, 0, 1, 10, "long rd", "residential", geometry),
	}
	return newMatcher(t, nodes, edges)
}

// mid-trace observations drift ~170 m off the road: beyond the default
// search radius, inside the relaxed one
func driftingTrace() *datastructure.Trace {
	return traceOf(
		geo.NewPoint(10, 2),
		geo.NewPoint(60, -2),
		geo.NewPoint(110, 170),
		geo.NewPoint(160, 170),
		geo.NewPoint(210, 170),
		geo.NewPoint(260, 170),
		geo.NewPoint(310, 2),
		geo.NewPoint(360, -2),
	)
}

func TestFindWeakRuns(t *testing.T) {
	out := datastructure.NewOutput([]datastructure.Estimate{
		datastructure.NewEstimate(0, 0.9),
		datastructure.NewEstimate(0, 0.2),
		datastructure.NewEstimate(0, 0.1),
		datastructure.NewEstimate(0, 0.8),
		datastructure.NewEstimate(0, 0.3),
	})

	runs := findWeakRuns(out, pkg.CONFIDENCE_THRESHOLD)
	require.Equal(t, []weakRun{{from: 1, to: 2}, {from: 4, to: 4}}, runs)
}

func TestFindWeakRunsNone(t *testing.T) {
	out := datastructure.NewOutput([]datastructure.Estimate{
		datastructure.NewEstimate(0, 0.9),
		datastructure.NewEstimate(0, 0.8),
	})
	require.Empty(t, findWeakRuns(out, pkg.CONFIDENCE_THRESHOLD))
}

func TestMatchFrechetSmartRecovery(t *testing.T) {
	fm := longRoadMatcher(t)
	trace := driftingTrace()

	plain, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)

	// the drifting stretch is unmatchable at the default radius
	weak := findWeakRuns(plain, pkg.CONFIDENCE_THRESHOLD)
	require.NotEmpty(t, weak)
	for i := 2; i <= 5; i++ {
		require.EqualValues(t, pkg.EID_COMMON, plain.Edge(i), "observation %d", i)
	}

	smart, err := fm.MatchFrechetSmart(trace, 1)
	require.NoError(t, err)

	// re-splitting with the relaxed bound recovers the whole stretch
	for i := 0; i < smart.Len(); i++ {
		require.EqualValues(t, 0, smart.Edge(i), "observation %d", i)
	}
	require.Greater(t, smart.SumConfidence(), plain.SumConfidence())
}

func TestMatchFrechetSmartNeverWorse(t *testing.T) {
	testTraces := []*datastructure.Trace{
		driftingTrace(),
		traceOf(geo.NewPoint(10, 2), geo.NewPoint(60, -2), geo.NewPoint(110, 1)),
		traceOf(geo.NewPoint(5, 140), geo.NewPoint(55, 140), geo.NewPoint(105, 140)),
	}

	for _, trace := range testTraces {
		fm := longRoadMatcher(t)

		plain, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
		require.NoError(t, err)
		smart, err := fm.MatchFrechetSmart(trace, 2)
		require.NoError(t, err)

		require.Equal(t, plain.Len(), smart.Len())
		require.GreaterOrEqual(t, smart.SumConfidence(), plain.SumConfidence())
	}
}

func TestMatchFrechetSmartCleanTraceUntouched(t *testing.T) {
	fm := longRoadMatcher(t)
	trace := traceOf(
		geo.NewPoint(10, 2),
		geo.NewPoint(110, -2),
		geo.NewPoint(210, 1),
		geo.NewPoint(310, -1),
	)

	plain, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
	require.NoError(t, err)
	smart, err := fm.MatchFrechetSmart(trace, 3)
	require.NoError(t, err)

	require.Equal(t, plain.Estimates(), smart.Estimates())
}
