package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/util"
)

// LoadRoadGraph reads the pipe-delimited node/edge/geometry text files.
// node lines are "<id><delim><lat><delim><lon>"; with a nil projector the
// two coordinate fields are taken as planar metric x/y instead. edge lines
// are "<id><delim><from><delim><to><delim><cost><delim><length><delim><name><delim><type>".
// geometry lines are "<edgeId><delim><c1a><delim><c1b><delim><c2a>..."; an
// edge without a geometry line gets the straight segment between its
// endpoint nodes.
func LoadRoadGraph(nodesPath, edgesPath, geometryPath string, delim byte,
	projector *geo.Projector) (*RoadGraph, error) {

	nodes, err := loadNodes(nodesPath, delim, projector)
	if err != nil {
		return nil, err
	}

	edges, err := loadEdges(edgesPath, delim)
	if err != nil {
		return nil, err
	}

	if geometryPath != "" {
		if err := loadGeometry(geometryPath, delim, projector, nodes, edges); err != nil {
			return nil, err
		}
	}
	for i := range edges {
		e := &edges[i]
		if len(e.geometry) == 0 {
			if int(e.from) >= len(nodes) || int(e.to) >= len(nodes) {
				return nil, util.WrapErrorf(nil, util.ErrInput,
					"edge %d references unknown node", e.id)
			}
			e.geometry = []geo.Point{nodes[e.from], nodes[e.to]}
		}
		if e.length == 0 {
			e.length = geo.PolylineLength(e.geometry)
		}
	}

	return NewRoadGraph(nodes, edges)
}

func loadNodes(path string, delim byte, projector *geo.Projector) ([]geo.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open node file %s", path)
	}
	defer f.Close()

	nodes := make([]geo.Point, 0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(delim))
		if len(fields) < 3 {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"node line %q needs 3 fields", line)
		}
		a, err := util.StringToFloat64(fields[1])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "node line %q", line)
		}
		b, err := util.StringToFloat64(fields[2])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "node line %q", line)
		}
		if projector != nil {
			nodes = append(nodes, projector.Project(a, b))
		} else {
			nodes = append(nodes, geo.NewPoint(a, b))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "read node file %s", path)
	}
	return nodes, nil
}

func loadEdges(path string, delim byte) ([]Edge, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open edge file %s", path)
	}
	defer f.Close()

	edges := make([]Edge, 0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(delim))
		if len(fields) < 5 {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"edge line %q needs at least 5 fields", line)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "edge line %q", line)
		}
		from, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "edge line %q", line)
		}
		to, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "edge line %q", line)
		}
		cost, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "edge line %q", line)
		}
		length, err := util.StringToFloat64(fields[4])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "edge line %q", line)
		}
		name, roadType := "", ""
		if len(fields) > 5 {
			name = fields[5]
		}
		if len(fields) > 6 {
			roadType = fields[6]
		}
		e := Edge{
			id:       Index(id),
			from:     Index(from),
			to:       Index(to),
			cost:     cost,
			length:   length,
			name:     name,
			roadType: roadType,
		}
		edges = append(edges, e)
	}
	if err := sc.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "read edge file %s", path)
	}
	return edges, nil
}

func loadGeometry(path string, delim byte, projector *geo.Projector,
	nodes []geo.Point, edges []Edge) error {
	f, err := os.Open(path)
	if err != nil {
		return util.WrapErrorf(err, util.ErrIO, "open geometry file %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(delim))
		if len(fields) < 5 || len(fields)%2 == 0 {
			return util.WrapErrorf(nil, util.ErrInput,
				"geometry line %q needs an edge id and at least two coordinate pairs", line)
		}
		eid, err := strconv.Atoi(fields[0])
		if err != nil || eid < 0 || eid >= len(edges) {
			return util.WrapErrorf(err, util.ErrInput, "geometry line %q: bad edge id", line)
		}
		points := make([]geo.Point, 0, (len(fields)-1)/2)
		for i := 1; i < len(fields); i += 2 {
			a, err := util.StringToFloat64(fields[i])
			if err != nil {
				return util.WrapErrorf(err, util.ErrInput, "geometry line %q", line)
			}
			b, err := util.StringToFloat64(fields[i+1])
			if err != nil {
				return util.WrapErrorf(err, util.ErrInput, "geometry line %q", line)
			}
			if projector != nil {
				points = append(points, projector.Project(a, b))
			} else {
				points = append(points, geo.NewPoint(a, b))
			}
		}
		edges[eid].geometry = points
	}
	if err := sc.Err(); err != nil {
		return util.WrapErrorf(err, util.ErrIO, "read geometry file %s", path)
	}
	return nil
}

// WriteGraph serializes the whole graph to a bzip2-compressed text file.
func (g *RoadGraph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return util.WrapErrorf(err, util.ErrIO, "create %s", filename)
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return util.WrapErrorf(err, util.ErrIO, "bzip2 writer for %s", filename)
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)
	defer w.Flush()

	fmt.Fprintf(w, "%d %d\n", len(g.nodes), len(g.edges))

	for _, n := range g.nodes {
		xF := strconv.FormatFloat(n.GetX(), 'f', -1, 64)
		yF := strconv.FormatFloat(n.GetY(), 'f', -1, 64)
		fmt.Fprintf(w, "%s %s\n", xF, yF)
	}

	for i := range g.edges {
		e := &g.edges[i]
		lengthF := strconv.FormatFloat(e.length, 'f', -1, 64)
		fmt.Fprintf(w, "%d|%d|%d|%d|%s|%s|%s\n",
			e.id, e.from, e.to, e.cost, lengthF, e.name, e.roadType)
	}

	for i := range g.edges {
		e := &g.edges[i]
		fmt.Fprintf(w, "%d", len(e.geometry))
		for _, p := range e.geometry {
			xF := strconv.FormatFloat(p.GetX(), 'f', -1, 64)
			yF := strconv.FormatFloat(p.GetY(), 'f', -1, 64)
			fmt.Fprintf(w, " %s %s", xF, yF)
		}
		fmt.Fprintf(w, "\n")
	}

	return nil
}

// ReadGraph loads a graph written by WriteGraph.
func ReadGraph(filename string) (*RoadGraph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open %s", filename)
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "bzip2 reader for %s", filename)
	}
	defer bz.Close()

	r := bufio.NewReader(bz)
	readLine := func() (string, error) {
		line, err := r.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				return strings.TrimRight(line, "\r\n"), nil
			}
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	header, err := readLine()
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "read header of %s", filename)
	}
	var numNodes, numEdges int
	if _, err := fmt.Sscanf(header, "%d %d", &numNodes, &numEdges); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInput, "invalid graph header %q", header)
	}

	nodes := make([]geo.Point, numNodes)
	for i := 0; i < numNodes; i++ {
		line, err := readLine()
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrIO, "read node %d", i)
		}
		var x, y float64
		if _, err := fmt.Sscanf(line, "%f %f", &x, &y); err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "invalid node line %q", line)
		}
		nodes[i] = geo.NewPoint(x, y)
	}

	edges := make([]Edge, numEdges)
	for i := 0; i < numEdges; i++ {
		line, err := readLine()
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrIO, "read edge %d", i)
		}
		fields := strings.Split(line, "|")
		if len(fields) != 7 {
			return nil, util.WrapErrorf(nil, util.ErrInput, "invalid edge line %q", line)
		}
		id, err1 := strconv.Atoi(fields[0])
		from, err2 := strconv.Atoi(fields[1])
		to, err3 := strconv.Atoi(fields[2])
		cost, err4 := strconv.Atoi(fields[3])
		length, err5 := strconv.ParseFloat(fields[4], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil {
			return nil, util.WrapErrorf(nil, util.ErrInput, "invalid edge line %q", line)
		}
		edges[i] = Edge{
			id:       Index(id),
			from:     Index(from),
			to:       Index(to),
			cost:     cost,
			length:   length,
			name:     fields[5],
			roadType: fields[6],
		}
	}

	for i := 0; i < numEdges; i++ {
		line, err := readLine()
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrIO, "read geometry of edge %d", i)
		}
		fields := strings.Fields(line)
		if len(fields) < 1 {
			return nil, util.WrapErrorf(nil, util.ErrInput, "invalid geometry line %q", line)
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || len(fields) != 1+2*n {
			return nil, util.WrapErrorf(err, util.ErrInput, "invalid geometry line %q", line)
		}
		geometry := make([]geo.Point, n)
		for j := 0; j < n; j++ {
			x, err1 := strconv.ParseFloat(fields[1+2*j], 64)
			y, err2 := strconv.ParseFloat(fields[2+2*j], 64)
			if err1 != nil || err2 != nil {
				return nil, util.WrapErrorf(nil, util.ErrInput, "invalid geometry line %q", line)
			}
			geometry[j] = geo.NewPoint(x, y)
		}
		edges[i].geometry = geometry
	}

	return NewRoadGraph(nodes, edges)
}
