package datastructure

import (
	"bufio"
	"os"
	"strings"

	"github.com/lintang-b-s/mapmatch/pkg/geo"
	"github.com/lintang-b-s/mapmatch/pkg/util"
)

// Trace is an ordered sequence of noisy planar observations.
type Trace struct {
	observations []geo.Point
}

func NewTrace(observations []geo.Point) *Trace {
	return &Trace{observations: observations}
}

func (t *Trace) Observations() []geo.Point {
	return t.observations
}

func (t *Trace) Get(i int) geo.Point {
	return t.observations[i]
}

func (t *Trace) Len() int {
	return len(t.observations)
}

// Sub the sub-trace covering observation indices [from, to] inclusive.
// shares the backing array, the matcher never mutates observations.
func (t *Trace) Sub(from, to int) *Trace {
	return &Trace{observations: t.observations[from : to+1]}
}

// LoadTrace reads a trace file with one observation per line,
// "<id><delim><lat><delim><lon>". the id field is ignored. with a nil
// projector the coordinate fields are planar metric x/y.
func LoadTrace(path string, delim byte, projector *geo.Projector) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open trace file %s", path)
	}
	defer f.Close()

	observations := make([]geo.Point, 0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(delim))
		if len(fields) < 3 {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"trace line %q needs 3 fields", line)
		}
		a, err := util.StringToFloat64(fields[1])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "trace line %q", line)
		}
		b, err := util.StringToFloat64(fields[2])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "trace line %q", line)
		}
		if projector != nil {
			observations = append(observations, projector.Project(a, b))
		} else {
			observations = append(observations, geo.NewPoint(a, b))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "read trace file %s", path)
	}
	return NewTrace(observations), nil
}
