package main

import (
	"flag"

	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/logger"
	"github.com/lintang-b-s/mapmatch/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	osmFile = flag.String("osm", "./data/map.osm.pbf", "openstreetmap pbf extract")
	outFile = flag.String("out", "./data/roads.graph", "binary road graph output")
	refLat  = flag.Float64("ref_lat", 0, "projection reference latitude")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	parser := osmparser.NewOSMParser(log)
	graph, err := parser.Parse(*osmFile, geo.NewProjector(*refLat))
	if err != nil {
		log.Fatal("parsing osm extract", zap.Error(err))
	}

	if err := graph.WriteGraph(*outFile); err != nil {
		log.Fatal("writing graph", zap.Error(err))
	}
	log.Info("graph written", zap.String("file", *outFile),
		zap.Int("nodes", graph.NumberOfNodes()), zap.Int("edges", graph.NumberOfEdges()))
}
