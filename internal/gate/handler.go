package gate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=gate_test

type routeResolver interface {
	Resolve(ctx context.Context, token, path string) (State, Decision, error)
}

type Handler struct {
	resolver routeResolver
}

func NewHandler(resolver routeResolver) *Handler {
	return &Handler{
		resolver: resolver,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/gate/route", h.HandleRoute).Methods("GET", "OPTIONS").Name("gate-route")
}

type RouteResponse struct {
	State string `json:"state"`
	Decision
}

func (h *Handler) HandleRoute(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gate.route")
	defer span.End()

	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "error, path missing", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("path", path))

	token := r.Header.Get(middleware.AuthTokenHeader)
	state, decision, err := h.resolver.Resolve(ctx, token, path)
	if err != nil {
		if errors.Is(err, ErrRegistryClosed) || errors.Is(err, ErrStopped) {
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
			return
		}
		log.Errorf("resolve route %s: %s", path, err)
		http.Error(w, "resolve route failed", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("state", state.String()))
	respJson, err := json.Marshal(RouteResponse{
		State:    state.String(),
		Decision: decision,
	})
	if err != nil {
		log.Errorf("marshal route decision: %s", err)
		http.Error(w, "resolve route failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
