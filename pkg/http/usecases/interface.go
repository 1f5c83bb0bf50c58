package usecases

import (
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
)

type MatcherEngine interface {
	MatchFrechet(trace *datastructure.Trace, maxErrSq float64) (*datastructure.Output, error)
	MatchFrechetSmart(trace *datastructure.Trace, numRetries int) (*datastructure.Output, error)
}
