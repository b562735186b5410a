package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/profile"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=dashboard_test

const maxIntakeItems = 200

type targetsProvider interface {
	Targets(ctx context.Context, userID uuid.UUID) (nutrition.Targets, error)
}

// Handler serves the nutrition page: targets and the day's intake.
type Handler struct {
	targets targetsProvider
}

func NewHandler(targets targetsProvider) *Handler {
	return &Handler{
		targets: targets,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/nutrition/targets", h.HandleCompute).Methods("POST", "OPTIONS").Name("compute-targets")
	r.HandleFunc("/nutrition/targets", h.HandleGetTargets).Methods("GET", "OPTIONS").Name("get-targets")
	r.HandleFunc("/nutrition/intake", h.HandleIntake).Methods("POST", "OPTIONS").Name("intake")
}

// TargetsResponse carries display values and the exact ones they were rounded from.
type TargetsResponse struct {
	Targets nutrition.Targets `json:"targets"`
	Exact   nutrition.Targets `json:"exact"`
}

type IntakeRequest struct {
	Items []nutrition.IntakeItem `json:"items"`
}

type IntakeResponse = nutrition.IntakeReport

// HandleCompute runs the calculator on posted attributes. Nothing is stored.
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.compute")
	defer span.End()

	var in nutrition.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		log.Debugf("compute targets, unmarshal json: %s", err)
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	targets, err := nutrition.Compute(in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.writeTargets(w, targets)
}

func (h *Handler) HandleGetTargets(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.targets")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user", userID.String()))

	targets, err := h.targets.Targets(ctx, userID)
	if err != nil {
		h.targetsError(w, userID, err)
		return
	}

	h.writeTargets(w, targets)
}

func (h *Handler) HandleIntake(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.intake")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req IntakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("intake, unmarshal json: %s", err)
		http.Error(w, "invalid intake", http.StatusBadRequest)
		return
	}
	if len(req.Items) > maxIntakeItems {
		http.Error(w, "too many items", http.StatusBadRequest)
		return
	}
	for _, item := range req.Items {
		if err := item.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	targets, err := h.targets.Targets(ctx, userID)
	if err != nil {
		h.targetsError(w, userID, err)
		return
	}

	report := nutrition.ReportOf(nutrition.SumIntake(req.Items), targets.Rounded().Macros)
	respJson, err := json.Marshal(report)
	if err != nil {
		log.Errorf("marshal intake for %s: %s", userID, err)
		http.Error(w, "intake failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) targetsError(w http.ResponseWriter, userID uuid.UUID, err error) {
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		http.Error(w, "profile not found, finish onboarding first", http.StatusNotFound)
	case errors.Is(err, nutrition.ErrInvalidInput):
		// stored profile no longer passes validation
		log.Warnf("targets for %s: %s", userID, err)
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Errorf("targets for %s: %s", userID, err)
		http.Error(w, "get targets failed", http.StatusInternalServerError)
	}
}

func (h *Handler) writeTargets(w http.ResponseWriter, targets nutrition.Targets) {
	respJson, err := json.Marshal(TargetsResponse{
		Targets: targets.Rounded(),
		Exact:   targets,
	})
	if err != nil {
		log.Errorf("marshal targets: %s", err)
		http.Error(w, "targets failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
