package osmparser

import (
	"context"
	"os"

	"github.com/lintang-b-s/mapmatch/pkg/datastructure"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

// accepted highway values, everything else is not drivable road
var acceptedHighways = map[string]bool{
	"motorway": true, "trunk": true, "primary": true, "secondary": true,
	"tertiary": true, "unclassified": true, "residential": true,
	"service": true, "motorway_link": true, "trunk_link": true,
	"primary_link": true, "secondary_link": true, "tertiary_link": true,
	"living_street": true, "road": true,
}

type OSMParser struct {
	log *zap.Logger
}

func NewOSMParser(log *zap.Logger) *OSMParser {
	return &OSMParser{log: log}
}

// Parse reads an .osm.pbf extract and builds the road graph. ways are split
// at junction nodes (nodes shared by more than one way or used twice);
// intermediate way nodes become edge geometry. two-way roads produce one
// edge per direction with reversed geometry.
func (p *OSMParser) Parse(path string, projector *geo.Projector) (*datastructure.RoadGraph, error) {
	ways, err := p.scanWays(path)
	if err != nil {
		return nil, err
	}
	p.log.Info("scanned osm ways", zap.Int("ways", len(ways)))

	nodeUse := make(map[osm.NodeID]int)
	for _, w := range ways {
		for i, ref := range w.refs {
			nodeUse[ref]++
			if i == 0 || i == len(w.refs)-1 {
				// endpoints always split
				nodeUse[ref]++
			}
		}
	}

	coords, err := p.scanNodeCoords(path, nodeUse)
	if err != nil {
		return nil, err
	}
	p.log.Info("scanned osm nodes", zap.Int("nodes", len(coords)))

	return p.buildGraph(ways, coords, nodeUse, projector)
}

type wayData struct {
	refs    []osm.NodeID
	name    string
	highway string
	oneway  bool
}

func (p *OSMParser) scanWays(path string) ([]wayData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open osm file %s", path)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 3)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	ways := make([]wayData, 0)
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		highway := w.Tags.Find("highway")
		if !acceptedHighways[highway] || len(w.Nodes) < 2 {
			continue
		}
		refs := make([]osm.NodeID, len(w.Nodes))
		for i, n := range w.Nodes {
			refs[i] = n.ID
		}
		ways = append(ways, wayData{
			refs:    refs,
			name:    w.Tags.Find("name"),
			highway: highway,
			oneway:  w.Tags.Find("oneway") == "yes" || highway == "motorway",
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "scan osm ways in %s", path)
	}
	return ways, nil
}

func (p *OSMParser) scanNodeCoords(path string, nodeUse map[osm.NodeID]int) (map[osm.NodeID]geo.Coordinate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open osm file %s", path)
	}
	defer f.Close()

	scanner := osmpbf.New(context.Background(), f, 3)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	coords := make(map[osm.NodeID]geo.Coordinate, len(nodeUse))
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, used := nodeUse[n.ID]; !used {
			continue
		}
		coords[n.ID] = geo.NewCoordinate(n.Lat, n.Lon)
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "scan osm nodes in %s", path)
	}
	return coords, nil
}

func (p *OSMParser) buildGraph(ways []wayData, coords map[osm.NodeID]geo.Coordinate,
	nodeUse map[osm.NodeID]int, projector *geo.Projector) (*datastructure.RoadGraph, error) {

	nodeIndex := make(map[osm.NodeID]datastructure.Index)
	nodes := make([]geo.Point, 0)
	graphNode := func(ref osm.NodeID) datastructure.Index {
		if idx, ok := nodeIndex[ref]; ok {
			return idx
		}
		c := coords[ref]
		idx := datastructure.Index(len(nodes))
		nodes = append(nodes, projector.Project(c.Lat, c.Lon))
		nodeIndex[ref] = idx
		return idx
	}

	edges := make([]datastructure.Edge, 0)
	addEdge := func(from, to datastructure.Index, geometry []geo.Point, w *wayData) {
		id := datastructure.Index(len(edges))
		length := geo.PolylineLength(geometry)
		edges = append(edges, datastructure.NewEdge(id, from, to, int(length),
			w.name, w.highway, geometry))
	}

	for wi := range ways {
		w := &ways[wi]
		segStart := 0
		for i := 1; i < len(w.refs); i++ {
			if i != len(w.refs)-1 && nodeUse[w.refs[i]] < 2 {
				continue
			}
			if _, ok := coords[w.refs[segStart]]; !ok {
				segStart = i
				continue
			}
			if _, ok := coords[w.refs[i]]; !ok {
				segStart = i
				continue
			}

			geometry := make([]geo.Point, 0, i-segStart+1)
			incomplete := false
			for j := segStart; j <= i; j++ {
				c, ok := coords[w.refs[j]]
				if !ok {
					incomplete = true
					break
				}
				geometry = append(geometry, projector.Project(c.Lat, c.Lon))
			}
			if incomplete {
				segStart = i
				continue
			}

			from := graphNode(w.refs[segStart])
			to := graphNode(w.refs[i])
			addEdge(from, to, geometry, w)
			if !w.oneway {
				reversed := make([]geo.Point, len(geometry))
				for j := range geometry {
					reversed[j] = geometry[len(geometry)-1-j]
				}
				addEdge(to, from, reversed, w)
			}
			segStart = i
		}
	}

	p.log.Info("built road graph",
		zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))
	return datastructure.NewRoadGraph(nodes, edges)
}
