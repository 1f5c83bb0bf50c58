package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lintang-b-s/mapmatch/pkg/util"
	"go.uber.org/zap"
)

func (api *matcherAPI) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)
}

func (api *matcherAPI) errorResponse(w http.ResponseWriter, r *http.Request,
	status int, code string, message string) {
	var resp errorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	api.writeJSON(w, status, resp)
}

func (api *matcherAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
}

func (api *matcherAPI) FailedValidationResponse(w http.ResponseWriter, r *http.Request,
	errs map[string]string) {
	api.errorResponse(w, r, http.StatusUnprocessableEntity, "failed_validation",
		fmt.Sprintf("%v", errs))
}

func (api *matcherAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("internal server error", zap.Error(err),
		zap.String("method", r.Method), zap.String("path", r.URL.Path))

	if code := util.ErrorCode(err); code == util.ErrInput {
		api.errorResponse(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	api.errorResponse(w, r, http.StatusInternalServerError, "internal_error",
		util.MessageInternalServerError)
}
