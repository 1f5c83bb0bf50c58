package datastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/mapmatch/pkg"
	"github.com/lintang-b-s/mapmatch/pkg/util"
)

// Estimate is the matching result for one observation. Edge is
// pkg.EID_COMMON when no edge survived the matching.
type Estimate struct {
	Edge       Index
	Confidence float64
}

func NewEstimate(edge Index, confidence float64) Estimate {
	return Estimate{Edge: edge, Confidence: confidence}
}

// UnmatchedEstimate the sentinel estimate for an observation without any
// survivable candidate.
func UnmatchedEstimate() Estimate {
	return Estimate{Edge: pkg.EID_COMMON, Confidence: 0}
}

// Output is the per-observation result of one matcher call, in observation
// order.
type Output struct {
	estimates []Estimate
}

func NewOutput(estimates []Estimate) *Output {
	return &Output{estimates: estimates}
}

func NewEmptyOutput(size int) *Output {
	estimates := make([]Estimate, size)
	for i := range estimates {
		estimates[i] = UnmatchedEstimate()
	}
	return &Output{estimates: estimates}
}

func (o *Output) Estimates() []Estimate {
	return o.estimates
}

func (o *Output) Len() int {
	return len(o.estimates)
}

func (o *Output) Edge(i int) Index {
	return o.estimates[i].Edge
}

func (o *Output) Confidence(i int) float64 {
	return o.estimates[i].Confidence
}

func (o *Output) SetEstimate(i int, e Estimate) {
	o.estimates[i] = e
}

// SumConfidence aggregate confidence over all estimates.
func (o *Output) SumConfidence() float64 {
	sum := 0.0
	for _, e := range o.estimates {
		sum += e.Confidence
	}
	return sum
}

// Save writes one record per line, "<index>|<edge>|<confidence>", the
// confidence with two-decimal fixed precision.
func (o *Output) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return util.WrapErrorf(err, util.ErrIO, "create output file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	for i, e := range o.estimates {
		fmt.Fprintf(w, "%d%c%d%c%.2f\n", i, pkg.IO_DELIM, e.Edge, pkg.IO_DELIM, e.Confidence)
	}
	return nil
}

// LoadOutput reads a file written by Save.
func LoadOutput(path string) (*Output, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "open output file %s", path)
	}
	defer f.Close()

	estimates := make([]Estimate, 0)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, string(byte(pkg.IO_DELIM)))
		if len(fields) < 3 {
			return nil, util.WrapErrorf(nil, util.ErrInput,
				"output line %q needs 3 fields", line)
		}
		edge, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "output line %q", line)
		}
		confidence, err := util.StringToFloat64(fields[2])
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInput, "output line %q", line)
		}
		estimates = append(estimates, NewEstimate(Index(edge), confidence))
	}
	if err := sc.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrIO, "read output file %s", path)
	}
	return NewOutput(estimates), nil
}

// Evaluate similarity against a reference matching of the same trace:
// the confidence-weighted share of estimates agreeing with the reference.
func (o *Output) Evaluate(reference *Output) (float64, error) {
	if o.Len() != reference.Len() {
		return 0, util.WrapErrorf(nil, util.ErrSizeMismatch,
			"evaluate got %d estimates against %d", o.Len(), reference.Len())
	}
	result := 0.0
	for i := range o.estimates {
		if o.Edge(i) == reference.Edge(i) {
			result += o.Confidence(i)
		}
	}
	return result / float64(o.Len()), nil
}
