package http

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/julienschmidt/httprouter"
	"net/http"
	"time"
)

// MaxAwait bounds the wait of a status request with the await parameter.
const MaxAwait = 10 * time.Minute

// NewHandler creates a new instance of the REST API handler.
func NewHandler(orchestrator app.OrchestratorSvc, accessKey app.ApiAccessKey) Handler {
	return Handler{
		orchestrator: orchestrator,
		accessKey:    string(accessKey),
	}
}

// Handler handles the REST API requests.
type Handler struct {
	orchestrator app.OrchestratorSvc
	accessKey    string
}

// Groups returns the list of deployment groups.
func (h Handler) Groups(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.orchestrator.Groups(r.Context())
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Group returns one deployment group with its pools and the current deployment.
func (h Handler) Group(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.orchestrator.Group(r.Context(), app.GroupID(ps.ByName("group")))
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Weights returns the authoritative traffic weights of the group.
func (h Handler) Weights(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.orchestrator.Weights(r.Context(), app.GroupID(ps.ByName("group")))
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Deploy starts a deployment of the group and responds with its handle.
func (h Handler) Deploy(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	var f app.FormDeploy
	err = json.NewDecoder(r.Body).Decode(&f)
	if err != nil {
		apiError(w, fmt.Errorf("%w: invalid request body: %v", errtype.ErrBadInput, err))
		return
	}
	req, err := f.Request()
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.orchestrator.Deploy(r.Context(), app.GroupID(ps.ByName("group")), req)
	if err != nil {
		apiError(w, err)
		return
	}
	apiAccepted(w, res)
}

// Deployment returns the status of the deployment.
// With the await parameter, e.g. ?await=5m, it waits for the deployment to end first.
func (h Handler) Deployment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	handle := deploymentHandle(ps)
	await := r.URL.Query().Get("await")
	if await == "" {
		res, err := h.orchestrator.Status(r.Context(), handle)
		if err != nil {
			apiError(w, err)
			return
		}
		apiSuccess(w, res)
		return
	}
	d, err := time.ParseDuration(await)
	if err != nil || d <= 0 {
		apiError(w, fmt.Errorf("%w: invalid await duration %q", errtype.ErrBadInput, await))
		return
	}
	if d > MaxAwait {
		d = MaxAwait
	}
	ctx, cancel := context.WithTimeout(r.Context(), d)
	defer cancel()
	res, err := h.orchestrator.Await(ctx, handle)
	if errors.Is(err, context.DeadlineExceeded) {
		res, err = h.orchestrator.Status(r.Context(), handle)
	}
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// CancelDeployment requests a rollback of the deployment.
func (h Handler) CancelDeployment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	handle := deploymentHandle(ps)
	err = h.orchestrator.Cancel(r.Context(), handle)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.orchestrator.Status(r.Context(), handle)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

// Recover retries the stalled rollback of the group.
func (h Handler) Recover(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	err := h.validateKey(r)
	if err != nil {
		apiError(w, err)
		return
	}
	group := app.GroupID(ps.ByName("group"))
	err = h.orchestrator.Recover(r.Context(), group)
	if err != nil {
		apiError(w, err)
		return
	}
	res, err := h.orchestrator.Group(r.Context(), group)
	if err != nil {
		apiError(w, err)
		return
	}
	apiSuccess(w, res)
}

func (h Handler) validateKey(r *http.Request) error {
	if r.URL.Query().Get("accessKey") != h.accessKey {
		return errors.WrapContext(errtype.ErrUnauthorized, errors.Context{Path: "http.Handler.validateKey"})
	}
	return nil
}

func deploymentHandle(ps httprouter.Params) app.DeploymentHandle {
	return app.DeploymentHandle{ID: ps.ByName("id"), GroupID: app.GroupID(ps.ByName("group"))}
}
