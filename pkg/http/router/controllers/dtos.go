package controllers

type observationRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type mapMatchRequest struct {
	Observations []observationRequest `json:"observations" validate:"required,min=1,dive"`
	Smart        bool                 `json:"smart"`
	NumRetries   int                  `json:"num_retries" validate:"min=0,max=10"`
	MaxError     float64              `json:"max_error" validate:"min=0"`
}

type matchedObservationResponse struct {
	Index      int     `json:"index"`
	Edge       int32   `json:"edge"`
	Confidence float64 `json:"confidence"`
	RoadName   string  `json:"road_name,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lon        float64 `json:"lon,omitempty"`
	Matched    bool    `json:"matched"`
}

type mapMatchResponse struct {
	Observations []matchedObservationResponse `json:"observations"`
	Path         string                       `json:"path"`
	Confidence   float64                      `json:"confidence"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
