package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/http"
	"github.com/lintang-b-s/mapmatch/pkg/http/usecases"
	"github.com/lintang-b-s/mapmatch/pkg/logger"
	"github.com/lintang-b-s/mapmatch/pkg/mapmatcher"
	"github.com/lintang-b-s/mapmatch/pkg/spatialindex"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	graphFile = flag.String("graph", "./data/roads.graph", "binary road graph")
	refLat    = flag.Float64("ref_lat", 0, "projection reference latitude")
)

func main() {
	flag.Parse()
	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	viper.SetDefault("PROJECTION_REF_LAT", *refLat)
	projector := geo.NewProjector(viper.GetFloat64("PROJECTION_REF_LAT"))

	graph, err := datastructure.ReadGraph(*graphFile)
	if err != nil {
		log.Fatal("loading road graph", zap.Error(err))
	}

	rtree := spatialindex.NewRtree()
	rtree.Build(graph, log)

	matcher := mapmatcher.NewFrechetMatcher(graph, rtree, log)
	matcherService := usecases.NewMatcherService(log, matcher, graph, projector)

	api := http.NewServer(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := api.Use(ctx, log, viper.GetBool("USE_RATE_LIMIT"), matcherService); err != nil {
		log.Fatal("starting api", zap.Error(err))
	}

	signal := http.GracefulShutdown()
	log.Info("map matching server stopped", zap.String("signal", signal.String()))
}
