package pkg

const (
	// EID_COMMON marks a geometric id that refers to a graph node shared
	// between edges instead of an interior vertex of one edge polyline.
	EID_COMMON int32 = -1

	INF_WEIGHT float64 = 1e15
)

// matcher tunables. per-call configuration, these are the compiled-in defaults.
const (
	NN_NUMBER_GLOBAL = 50
	MAX_ERROR_GLOBAL = 200.0

	// default squared search radius in m^2
	MAX_CONSIDERED_AREA = 150.0 * 150.0

	NUM_PARTS = 10

	BUCKETS = 100000

	// initial frechet error bound in meters
	INITIAL_ERROR = 100.0

	CONFIDENCE_THRESHOLD = 0.5
)

const (
	IO_DELIM = '|'
)

const (
	DEBUG = false
)
