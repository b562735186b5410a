package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=profile_test

type profileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Save(ctx context.Context, userID uuid.UUID, p Profile) (*Profile, error)
}

type Handler struct {
	service profileService
}

func NewHandler(service profileService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/profile", h.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", h.HandleSave).Methods("PUT", "OPTIONS").Name("save-profile")
}

// SaveResponse carries the saved profile and its display targets, so the
// onboarding form can show them right away.
type SaveResponse struct {
	Profile *Profile          `json:"profile"`
	Targets nutrition.Targets `json:"targets"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.get")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	p, err := h.service.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		log.Errorf("get profile %s: %s", userID, err)
		http.Error(w, "get profile failed", http.StatusInternalServerError)
		return
	}

	profileJson, err := json.Marshal(p)
	if err != nil {
		log.Errorf("marshal profile %s: %s", userID, err)
		http.Error(w, "get profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, profileJson)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.profile.save")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var p Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		log.Debugf("save profile, unmarshal json: %s", err)
		http.Error(w, "invalid profile", http.StatusBadRequest)
		return
	}

	saved, err := h.service.Save(ctx, userID, p)
	if err != nil {
		if errors.Is(err, nutrition.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("save profile %s: %s", userID, err)
		http.Error(w, "save profile failed", http.StatusInternalServerError)
		return
	}

	targets, err := saved.Targets()
	if err != nil {
		log.Errorf("save profile %s, compute targets: %s", userID, err)
		http.Error(w, "save profile failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(SaveResponse{
		Profile: saved,
		Targets: targets.Rounded(),
	})
	if err != nil {
		log.Errorf("marshal saved profile %s: %s", userID, err)
		http.Error(w, "save profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}
