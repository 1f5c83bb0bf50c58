package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/mapmatch/pkg/geo"
	helper "github.com/lintang-b-s/mapmatch/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type matcherAPI struct {
	matcherService MatcherService
	log            *zap.Logger
	validate       *validator.Validate
	translator     ut.Translator
}

func New(matcherService MatcherService, log *zap.Logger) *matcherAPI {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, translator)

	return &matcherAPI{
		matcherService: matcherService,
		log:            log,
		validate:       validate,
		translator:     translator,
	}
}

func (api *matcherAPI) Routes(group *helper.RouteGroup) {
	group.POST("/mapmatch", api.mapMatch)
}

func (api *matcherAPI) mapMatch(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request mapMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, errors.New("request body must be valid json"))
		return
	}

	if err := api.validate.Struct(request); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			api.FailedValidationResponse(w, r, validationErrors.Translate(api.translator))
			return
		}
		api.BadRequestResponse(w, r, err)
		return
	}

	coords := make([]geo.Coordinate, len(request.Observations))
	for i, o := range request.Observations {
		coords[i] = geo.NewCoordinate(o.Lat, o.Lon)
	}

	maxErrSq := request.MaxError * request.MaxError
	matched, path, confidence, err := api.matcherService.MapMatch(coords,
		request.Smart, request.NumRetries, maxErrSq)
	if err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	response := mapMatchResponse{
		Observations: make([]matchedObservationResponse, len(matched)),
		Path:         path,
		Confidence:   confidence,
	}
	for i, mo := range matched {
		response.Observations[i] = matchedObservationResponse{
			Index:      mo.Index,
			Edge:       mo.Edge,
			Confidence: mo.Confidence,
			RoadName:   mo.RoadName,
			Lat:        mo.MatchedCoord.Lat,
			Lon:        mo.MatchedCoord.Lon,
			Matched:    mo.Matched,
		}
	}

	api.writeJSON(w, http.StatusOK, response)
}
