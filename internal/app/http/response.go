package http

import (
	"encoding/json"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	log "github.com/sirupsen/logrus"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// SetDefaultHeaders sets the basic set of headers to the response.
func SetDefaultHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Headers", "Accept,Authorization,Accept-Language,Content-Type,Content-Language")
}

func apiError(w http.ResponseWriter, err error) {
	SetDefaultHeaders(w)
	code := http.StatusInternalServerError
	body := errorBody{Error: http.StatusText(code)}
	switch true {
	case errors.Is(err, errtype.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errtype.ErrBadInput), errors.Is(err, errtype.ErrInvalidWeightDistribution):
		code = http.StatusBadRequest
	case errors.Is(err, errtype.ErrUnauthorized):
		code = http.StatusUnauthorized
	case errors.Is(err, errtype.ErrDeploymentInProgress):
		code = http.StatusConflict
		body.Kind = errtype.Kind(err)
	default:
		log.Println(err)
	}
	if code != http.StatusInternalServerError {
		body.Error = err.Error()
	}
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Println(err)
	}
}

func apiSuccess(w http.ResponseWriter, data interface{}) {
	apiResponse(w, http.StatusOK, data)
}

func apiAccepted(w http.ResponseWriter, data interface{}) {
	apiResponse(w, http.StatusAccepted, data)
}

func apiResponse(w http.ResponseWriter, code int, data interface{}) {
	SetDefaultHeaders(w)
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Println(err)
	}
}
