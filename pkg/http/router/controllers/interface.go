package controllers

import (
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/http/usecases"
)

type MatcherService interface {
	MapMatch(coords []geo.Coordinate, smart bool, numRetries int,
		maxErrSq float64) ([]usecases.MatchedObservation, string, float64, error)
}
