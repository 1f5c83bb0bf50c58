package mapmatcher

import (
	"math"

	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/util"
	"go.uber.org/zap"
)

// FrechetMatcher assigns every observation of a trace to the most plausible
// road edge. candidate vertices come from the spatial index, the assignment
// is a best-first dynamic program over (observation, geometric vertex)
// states whose transition cost is the discrete frechet couple-error of the
// walked geometric path, summed per step.
type FrechetMatcher struct {
	graph        *datastructure.RoadGraph
	index        SpatialIndex
	log          *zap.Logger
	nnNumber     int
	numBuckets   int
	numParts     int
	maxWalkDepth int
}

func NewFrechetMatcher(graph *datastructure.RoadGraph, index SpatialIndex,
	log *zap.Logger) *FrechetMatcher {
	return &FrechetMatcher{
		graph:        graph,
		index:        index,
		log:          log,
		nnNumber:     pkg.NN_NUMBER_GLOBAL,
		numBuckets:   pkg.BUCKETS,
		numParts:     pkg.NUM_PARTS,
		maxWalkDepth: MAX_WALK_DEPTH,
	}
}

func (fm *FrechetMatcher) SetNNNumber(nn int) {
	fm.nnNumber = nn
}

func (fm *FrechetMatcher) SetNumBuckets(buckets int) {
	fm.numBuckets = buckets
}

func (fm *FrechetMatcher) SetNumParts(parts int) {
	fm.numParts = parts
}

// MatchFrechet matches the whole trace against the road graph. maxErrSq is
// both the squared spatial-search radius and the admissibility bound for
// transitions. the returned output always has one estimate per observation,
// observations without a survivable candidate get (edge=-1, confidence=0).
func (fm *FrechetMatcher) MatchFrechet(trace *datastructure.Trace,
	maxErrSq float64) (*datastructure.Output, error) {

	if trace == nil || trace.Len() == 0 {
		return nil, util.WrapErrorf(nil, util.ErrInput, "empty trace")
	}
	if fm.graph.NumberOfEdges() == 0 {
		return nil, util.WrapErrorf(nil, util.ErrInput, "graph contains no edges")
	}

	m := trace.Len()
	run := &frechetRun{
		fm:       fm,
		trace:    trace,
		maxErrSq: maxErrSq,
		cands:    make([][]candidate, m),
		candSet:  make([]map[datastructure.GeomID]float64, m),
		fin:      make([]map[datastructure.GeomID]searchState, m),
	}
	for i := 0; i < m; i++ {
		run.fin[i] = make(map[datastructure.GeomID]searchState)
	}

	if err := run.seed(); err != nil {
		return nil, err
	}

	// the frontier dies where an observation has no reachable candidate;
	// restart the search right after the last finalised observation so the
	// rest of the trace still gets matched.
	for s := 0; s < m; {
		if len(run.cands[s]) == 0 {
			s++
			continue
		}
		highest := run.search(s)
		s = highest + 1
	}

	return run.extract(), nil
}

type frechetRun struct {
	fm       *FrechetMatcher
	trace    *datastructure.Trace
	maxErrSq float64

	cands   [][]candidate
	candSet []map[datastructure.GeomID]float64

	fin      []map[datastructure.GeomID]searchState
	pending  map[stateKey]searchState
	frontier *datastructure.BucketQueue[stateKey]
}

// seed queries the spatial index once per observation.
func (r *frechetRun) seed() error {
	radius := math.Sqrt(r.maxErrSq)
	for i := 0; i < r.trace.Len(); i++ {
		neighbors, err := r.fm.index.Nearest(r.trace.Get(i), r.fm.nnNumber, radius)
		if err != nil {
			return err
		}
		cs := make([]candidate, 0, len(neighbors))
		set := make(map[datastructure.GeomID]float64, len(neighbors))
		for _, nb := range neighbors {
			if nb.GetDistSq() > r.maxErrSq {
				continue
			}
			cs = append(cs, candidate{id: nb.GetID(), localErrSq: nb.GetDistSq()})
			set[nb.GetID()] = nb.GetDistSq()
		}
		r.cands[i] = cs
		r.candSet[i] = set
	}
	return nil
}

// search runs the best-first expansion from a fresh base at observation s
// and returns the highest observation index it finalised.
func (r *frechetRun) search(s int) int {
	m := r.trace.Len()
	r.pending = make(map[stateKey]searchState)
	r.frontier = datastructure.NewBucketQueue[stateKey](
		float64(m-s)*r.maxErrSq+1, r.fm.numBuckets, stateKeyLess)

	for _, c := range r.cands[s] {
		key := stateKey{obs: s, id: c.id}
		r.pending[key] = searchState{cost: c.localErrSq, via: pkg.EID_COMMON}
		r.frontier.Push(c.localErrSq, key)
	}

	highest := s
	for {
		cost, key, ok := r.frontier.Pop()
		if !ok {
			break
		}
		st, isPending := r.pending[key]
		if !isPending || st.cost != cost {
			// stale queue entry
			continue
		}
		r.fin[key.obs][key.id] = st
		delete(r.pending, key)
		if key.obs > highest {
			highest = key.obs
		}
		if key.obs+1 < m {
			r.expand(key, st)
		}
	}
	return highest
}

// expand relaxes every candidate of the next observation reachable from the
// popped state: staying put, or walking forward along edge geometry and
// through node outgoing edges. the transition cost is the maximum squared
// distance between the next observation and the walked vertices; walks that
// would require any distance above the error bound are rejected.
func (r *frechetRun) expand(key stateKey, st searchState) {
	next := key.obs + 1
	targets := r.candSet[next]
	if len(targets) == 0 {
		return
	}
	obs := r.trace.Get(next)

	if localErr, ok := targets[key.id]; ok {
		r.relax(next, key.id, st.cost+localErr, st.via)
	}

	labels := make(map[datastructure.GeomID]walkLabel)
	heap := datastructure.NewBinaryHeap[datastructure.GeomID]()
	done := make(map[datastructure.GeomID]bool)

	relaxWalk := func(h datastructure.GeomID, w float64, depth int, arrival datastructure.Index) {
		lb, seen := labels[h]
		if seen {
			if w > lb.maxErrSq {
				return
			}
			if w == lb.maxErrSq && (depth > lb.depth ||
				(depth == lb.depth && arrival >= lb.arrival)) {
				return
			}
		}
		labels[h] = walkLabel{maxErrSq: w, depth: depth, arrival: arrival}
		heap.Insert(datastructure.NewPriorityQueueNode(w, h))
	}

	for _, succ := range r.fm.graph.Adjacent(key.id) {
		d2 := geo.DistSq(obs, r.fm.graph.Coord(succ))
		if d2 > r.maxErrSq {
			continue
		}
		relaxWalk(succ, d2, 1, r.arrivalEdge(key.id, succ))
	}

	for !heap.IsEmpty() {
		node, _ := heap.ExtractMin()
		h := node.GetItem()
		if done[h] {
			continue
		}
		lb := labels[h]
		if node.GetRank() != lb.maxErrSq {
			continue
		}
		done[h] = true

		if _, ok := targets[h]; ok {
			r.relax(next, h, st.cost+lb.maxErrSq, lb.arrival)
		}
		if lb.depth >= r.fm.maxWalkDepth {
			continue
		}
		for _, succ := range r.fm.graph.Adjacent(h) {
			d2 := geo.DistSq(obs, r.fm.graph.Coord(succ))
			if d2 > r.maxErrSq {
				continue
			}
			relaxWalk(succ, math.Max(lb.maxErrSq, d2), lb.depth+1, r.arrivalEdge(h, succ))
		}
	}
}

// arrivalEdge the edge crossed by the step from -> to.
func (r *frechetRun) arrivalEdge(from, to datastructure.GeomID) datastructure.Index {
	if to.IsInternal() {
		return to.GetEid()
	}
	if from.IsInternal() {
		return from.GetEid()
	}
	// node to node step over an edge without interior vertices; outgoing
	// lists are ascending so the first hit is the lowest edge id
	for _, eid := range r.fm.graph.Outgoing(from.GetGid()) {
		e := r.fm.graph.Edge(eid)
		if !e.GeometryID(1).IsInternal() && e.GeometryID(1).GetGid() == to.GetGid() {
			return eid
		}
	}
	return pkg.EID_COMMON
}

func (r *frechetRun) relax(obs int, id datastructure.GeomID, cost float64,
	via datastructure.Index) {
	if _, finalised := r.fin[obs][id]; finalised {
		return
	}
	key := stateKey{obs: obs, id: id}
	if cur, ok := r.pending[key]; ok {
		if cost > cur.cost {
			return
		}
		if cost == cur.cost && via >= cur.via {
			return
		}
	}
	r.pending[key] = searchState{cost: cost, via: via}
	r.frontier.Push(cost, key)
}

// extract converts finalised states to per-observation estimates. walked
// backwards so node states can follow the continuity with the next choice.
func (r *frechetRun) extract() *datastructure.Output {
	m := r.trace.Len()
	out := datastructure.NewEmptyOutput(m)

	chosenID := make([]datastructure.GeomID, m)
	chosenOK := make([]bool, m)

	for i := m - 1; i >= 0; i-- {
		states := r.fin[i]
		if len(states) == 0 {
			continue
		}

		id, st, ok := pickBestState(states)
		if !ok {
			continue
		}
		chosenID[i] = id
		chosenOK[i] = true

		var edge datastructure.Index
		if id.IsInternal() {
			edge = id.GetEid()
		} else {
			var nextID datastructure.GeomID
			hasNext := i+1 < m && chosenOK[i+1]
			if hasNext {
				nextID = chosenID[i+1]
			}
			edge = r.resolveNodeEdge(id, st, nextID, hasNext)
		}
		if edge == pkg.EID_COMMON {
			continue
		}
		out.SetEstimate(i, datastructure.NewEstimate(edge, r.confidence(states)))
	}
	return out
}

// pickBestState lowest-error finalised state, interior vertices first so
// the emitted edge is the one the trace actually lies on. ties break on
// ascending (eid, gid).
func pickBestState(states map[datastructure.GeomID]searchState) (datastructure.GeomID, searchState, bool) {
	var bestID datastructure.GeomID
	var bestSt searchState
	found := false
	internal := false

	for id, st := range states {
		better := false
		switch {
		case !found:
			better = true
		case id.IsInternal() && !internal:
			better = true
		case id.IsInternal() == internal:
			if st.cost < bestSt.cost ||
				(st.cost == bestSt.cost && id.Less(bestID)) {
				better = true
			}
		}
		if better {
			bestID, bestSt = id, st
			found = true
			internal = id.IsInternal()
		}
	}
	return bestID, bestSt, found
}

// resolveNodeEdge representative edge for a node state: the outgoing edge
// continuing toward the next observation's choice, else the lowest outgoing
// edge id, else the edge the walk arrived over.
func (r *frechetRun) resolveNodeEdge(id datastructure.GeomID, st searchState,
	nextID datastructure.GeomID, hasNext bool) datastructure.Index {

	nodeID := id.GetGid()
	out := r.fm.graph.Outgoing(nodeID)

	if hasNext {
		for _, eid := range out {
			e := r.fm.graph.Edge(eid)
			if nextID.IsInternal() {
				if nextID.GetEid() == eid {
					return eid
				}
			} else if e.GetTo() == nextID.GetGid() || e.GetFrom() == nextID.GetGid() {
				return eid
			}
		}
	}
	if len(out) > 0 {
		return out[0]
	}
	if st.via != pkg.EID_COMMON {
		return st.via
	}
	return pkg.EID_COMMON
}

// confidence 1 - best/secondBest of the accumulated errors at this
// observation, the two best taken per edge. 1 when only one edge appears,
// 0 when none does or the two best are equal.
func (r *frechetRun) confidence(states map[datastructure.GeomID]searchState) float64 {
	edgeErr := make(map[datastructure.Index]float64)
	record := func(eid datastructure.Index, cost float64) {
		if cur, ok := edgeErr[eid]; !ok || cost < cur {
			edgeErr[eid] = cost
		}
	}
	for id, st := range states {
		if id.IsInternal() {
			record(id.GetEid(), st.cost)
			continue
		}
		if st.via != pkg.EID_COMMON {
			record(st.via, st.cost)
			continue
		}
		for _, eid := range r.fm.graph.Outgoing(id.GetGid()) {
			record(eid, st.cost)
		}
	}

	if len(edgeErr) == 0 {
		return 0
	}
	if len(edgeErr) == 1 {
		return 1
	}

	best, second := pkg.INF_WEIGHT, pkg.INF_WEIGHT
	for _, err := range edgeErr {
		if err < best {
			best, second = err, best
		} else if err < second {
			second = err
		}
	}
	if best == second {
		return 0
	}
	return util.Clamp(1-best/second, 0, 1)
}
