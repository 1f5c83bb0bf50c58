package main

import (
	"flag"
	"fmt"

	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/logger"
	"github.com/lintang-b-s/mapmatch/pkg/mapmatcher"
	"github.com/lintang-b-s/mapmatch/pkg/spatialindex"
	"go.uber.org/zap"
)

var (
	graphFile    = flag.String("graph", "./data/roads.graph", "binary road graph (see cmd/importer)")
	nodesFile    = flag.String("nodes", "", "node text file, overrides -graph together with -edges")
	edgesFile    = flag.String("edges", "", "edge text file")
	geometryFile = flag.String("geometry", "", "edge geometry text file")
	traceFile    = flag.String("trace", "./data/trace.txt", "input trace")
	outFile      = flag.String("out", "./data/out.txt", "output estimates")
	evalFile     = flag.String("evaluate", "", "reference output to evaluate against")
	smart        = flag.Bool("smart", true, "re-split low confidence stretches")
	numRetries   = flag.Int("retries", 1, "smart mode recursion depth")
	maxError     = flag.Float64("max_error", 0, "matching radius in meters, 0 uses the default")
	metric       = flag.Bool("metric", false, "inputs are planar metric coordinates")
	refLat       = flag.Float64("ref_lat", 0, "projection reference latitude for lat/lon inputs")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	var projector *geo.Projector
	if !*metric {
		projector = geo.NewProjector(*refLat)
	}

	var graph *datastructure.RoadGraph
	if *nodesFile != "" && *edgesFile != "" {
		graph, err = datastructure.LoadRoadGraph(*nodesFile, *edgesFile, *geometryFile,
			byte(pkg.IO_DELIM), projector)
	} else {
		graph, err = datastructure.ReadGraph(*graphFile)
	}
	if err != nil {
		log.Fatal("loading road graph", zap.Error(err))
	}
	log.Info("road graph loaded",
		zap.Int("nodes", graph.NumberOfNodes()), zap.Int("edges", graph.NumberOfEdges()))

	trace, err := datastructure.LoadTrace(*traceFile, byte(pkg.IO_DELIM), projector)
	if err != nil {
		log.Fatal("loading trace", zap.Error(err))
	}

	rtree := spatialindex.NewRtree()
	rtree.Build(graph, log)

	matcher := mapmatcher.NewFrechetMatcher(graph, rtree, log)

	var out *datastructure.Output
	if *smart {
		out, err = matcher.MatchFrechetSmart(trace, *numRetries)
	} else {
		maxErrSq := pkg.MAX_CONSIDERED_AREA
		if *maxError > 0 {
			maxErrSq = *maxError * *maxError
		}
		out, err = matcher.MatchFrechet(trace, maxErrSq)
	}
	if err != nil {
		log.Fatal("matching", zap.Error(err))
	}

	if err := out.Save(*outFile); err != nil {
		log.Fatal("saving output", zap.Error(err))
	}
	log.Info("matching done", zap.Int("observations", out.Len()),
		zap.Float64("aggregateConfidence", out.SumConfidence()/float64(out.Len())))

	if *evalFile != "" {
		reference, err := datastructure.LoadOutput(*evalFile)
		if err != nil {
			log.Fatal("loading reference output", zap.Error(err))
		}
		score, err := out.Evaluate(reference)
		if err != nil {
			log.Fatal("evaluating", zap.Error(err))
		}
		fmt.Printf("evaluation score: %.4f\n", score)
	}
}
