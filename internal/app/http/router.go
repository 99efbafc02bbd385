package http

import (
	"github.com/beldeveloper/bluegreen/internal/app/metrics"
	"github.com/julienschmidt/httprouter"
	"net/http"
)

// NewRouter creates and configures a new instance of the router.
func NewRouter(h Handler) *httprouter.Router {
	r := httprouter.New()

	r.GET("/groups", h.Groups)
	r.GET("/groups/:group", h.Group)
	r.GET("/groups/:group/weights", h.Weights)
	r.POST("/groups/:group/deployments", h.Deploy)
	r.GET("/groups/:group/deployments/:id", h.Deployment)
	r.DELETE("/groups/:group/deployments/:id", h.CancelDeployment)
	r.POST("/groups/:group/recover", h.Recover)
	r.Handler(http.MethodGet, "/metrics", metrics.Handler())

	r.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		SetDefaultHeaders(w)
		h := w.Header()
		h.Set("Access-Control-Allow-Methods", h.Get("Allow"))
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}
