package mapmatcher

import (
	"github.com/lintang-b-s/mapmatch/pkg/concurrent"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"go.uber.org/zap"
)

type batchJob struct {
	idx   int
	trace *datastructure.Trace
}

type batchResult struct {
	idx int
	out *datastructure.Output
	err error
}

// MatchBatch matches many traces concurrently. the road graph and spatial
// index are immutable after construction so every worker shares them;
// outputs come back in trace order. a failed trace yields a nil output and
// its error at the same position.
func (fm *FrechetMatcher) MatchBatch(traces []*datastructure.Trace,
	maxErrSq float64, numWorkers int) ([]*datastructure.Output, []error) {

	if numWorkers < 1 {
		numWorkers = 1
	}

	pool := concurrent.NewWorkerPool[batchJob, batchResult](numWorkers, len(traces))
	pool.Start(func(job batchJob) batchResult {
		out, err := fm.MatchFrechet(job.trace, maxErrSq)
		return batchResult{idx: job.idx, out: out, err: err}
	})

	go func() {
		for i, tr := range traces {
			pool.AddJob(batchJob{idx: i, trace: tr})
		}
		pool.Close()
		pool.Wait()
	}()

	outs := make([]*datastructure.Output, len(traces))
	errs := make([]error, len(traces))
	for res := range pool.CollectResults() {
		outs[res.idx] = res.out
		errs[res.idx] = res.err
	}

	fm.log.Info("batch matching finished", zap.Int("traces", len(traces)))
	return outs, errs
}
