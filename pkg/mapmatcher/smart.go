package mapmatcher

import (
	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/util"
	"go.uber.org/zap"
)

// weakRun is a maximal contiguous index range whose confidences fall below
// the threshold.
type weakRun struct {
	from int
	to   int
}

// MatchFrechetSmart matches the full trace, then re-matches low-confidence
// stretches as independent sub-traces with a relaxed error bound and
// splices the improved estimates back in. numRetries bounds the recursion
// depth, pkg.NUM_PARTS the cumulative number of sub-parts.
func (fm *FrechetMatcher) MatchFrechetSmart(trace *datastructure.Trace,
	numRetries int) (*datastructure.Output, error) {

	out, err := fm.MatchFrechet(trace, pkg.MAX_CONSIDERED_AREA)
	if err != nil {
		return nil, err
	}

	partsUsed := 0
	return fm.resplit(trace, out, pkg.MAX_CONSIDERED_AREA, numRetries, &partsUsed)
}

func (fm *FrechetMatcher) resplit(trace *datastructure.Trace,
	out *datastructure.Output, maxErrSq float64, numRetries int,
	partsUsed *int) (*datastructure.Output, error) {

	if numRetries <= 0 {
		return out, nil
	}

	runs := findWeakRuns(out, pkg.CONFIDENCE_THRESHOLD)
	if len(runs) == 0 {
		return out, nil
	}

	relaxed := util.MinG(2*maxErrSq, pkg.MAX_ERROR_GLOBAL*pkg.MAX_ERROR_GLOBAL)

	fm.log.Info("re-splitting trace at weak runs",
		zap.Int("weakRuns", len(runs)),
		zap.Int("retriesLeft", numRetries),
		zap.Float64("relaxedMaxErrorSq", relaxed))

	for _, run := range runs {
		if *partsUsed >= fm.numParts {
			return out, nil
		}
		*partsUsed++

		// extend one observation each side for boundary continuity
		lo := util.MaxG(0, run.from-1)
		hi := util.MinG(trace.Len()-1, run.to+1)

		subOut, err := fm.MatchFrechet(trace.Sub(lo, hi), relaxed)
		if err != nil {
			return nil, err
		}

		// splice only when the re-match actually improves the weak range,
		// so smart mode never lowers aggregate confidence
		curSum, newSum := 0.0, 0.0
		for i := run.from; i <= run.to; i++ {
			curSum += out.Confidence(i)
			newSum += subOut.Confidence(i - lo)
		}
		if newSum <= curSum {
			continue
		}
		for i := run.from; i <= run.to; i++ {
			out.SetEstimate(i, subOut.Estimates()[i-lo])
		}
	}

	return fm.resplit(trace, out, relaxed, numRetries-1, partsUsed)
}

func findWeakRuns(out *datastructure.Output, threshold float64) []weakRun {
	runs := make([]weakRun, 0)
	start := -1
	for i := 0; i < out.Len(); i++ {
		weak := out.Confidence(i) < threshold
		if weak && start < 0 {
			start = i
		}
		if !weak && start >= 0 {
			runs = append(runs, weakRun{from: start, to: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, weakRun{from: start, to: out.Len() - 1})
	}
	return runs
}
