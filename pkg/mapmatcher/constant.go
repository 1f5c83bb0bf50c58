package mapmatcher

const (
	// walk bound between two successive observations, in geometric
	// vertices. the walk corresponds to road travelled between samples.
	MAX_WALK_DEPTH = 50
)
