package mapmatcher

import (
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/spatialindex"
)

// SpatialIndex is the k-NN query surface the matcher consumes.
type SpatialIndex interface {
	Nearest(p geo.Point, k int, maxRadius float64) ([]spatialindex.Neighbor, error)
}

// candidate is a geometric vertex proposed by the spatial index for one
// observation, with its squared local error.
type candidate struct {
	id         datastructure.GeomID
	localErrSq float64
}

// stateKey identifies one DP state: observation index i matched at
// geometric vertex id.
type stateKey struct {
	obs int
	id  datastructure.GeomID
}

func stateKeyLess(a, b stateKey) bool {
	if a.obs != b.obs {
		return a.obs < b.obs
	}
	return a.id.Less(b.id)
}

// searchState is the label of a finalised (or tentative) DP state.
type searchState struct {
	cost float64
	// edge traversed by the incoming walk; pkg.EID_COMMON when the state
	// was seeded or reached without crossing edge geometry.
	via datastructure.Index
}

// walkLabel tracks the minimax label of one vertex during the bounded
// forward walk between two successive observations.
type walkLabel struct {
	maxErrSq float64
	depth    int
	arrival  datastructure.Index
}
