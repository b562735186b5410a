package progress

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=progress_test

const maxPageSize = 100

type progressService interface {
	Add(ctx context.Context, userID uuid.UUID, measurement Measurement) (*Measurement, error)
	Delete(ctx context.Context, userID uuid.UUID, id int) error
	List(ctx context.Context, userID uuid.UUID, page, size int) ([]Measurement, int, error)
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

type Handler struct {
	service progressService
}

func NewHandler(service progressService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/progress/measurements", h.HandleAdd).Methods("POST", "OPTIONS").Name("add-measurement")
	r.HandleFunc("/progress/measurements/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-measurement")
	r.HandleFunc("/progress/measurements/page/{page}/size/{size}", h.HandleList).Methods("GET", "OPTIONS").Name("list-measurements")
	r.HandleFunc("/progress/summary", h.HandleSummary).Methods("GET", "OPTIONS").Name("progress-summary")
}

type ListResponse struct {
	Measurements []Measurement `json:"measurements"`
	Total        int           `json:"total"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var m Measurement
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		log.Debugf("add measurement, unmarshal json: %s", err)
		http.Error(w, "invalid measurement", http.StatusBadRequest)
		return
	}

	added, err := h.service.Add(ctx, userID, m)
	if err != nil {
		if errors.Is(err, ErrInvalidMeasurement) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("add measurement for %s: %s", userID, err)
		http.Error(w, "add measurement failed", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("marshal added measurement: %s", err)
		http.Error(w, "add measurement failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, ErrMeasurementNotFound) {
			http.Error(w, "measurement not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete measurement %d for %s: %s", id, userID, err)
		http.Error(w, "delete measurement failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		http.Error(w, "error, bad page", http.StatusBadRequest)
		return
	}
	size, err := strconv.Atoi(vars["size"])
	if err != nil || size < 1 || size > maxPageSize {
		http.Error(w, "error, bad size", http.StatusBadRequest)
		return
	}

	// pages start at 1 in the api, at 0 in the repo
	measurements, total, err := h.service.List(ctx, userID, page-1, size)
	if err != nil {
		log.Errorf("list measurements for %s: %s", userID, err)
		http.Error(w, "list measurements failed", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{
		Measurements: measurements,
		Total:        total,
	})
	if err != nil {
		log.Errorf("marshal measurements: %s", err)
		http.Error(w, "list measurements failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.progress.summary")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	summary, err := h.service.Summary(ctx, userID)
	if err != nil {
		log.Errorf("progress summary for %s: %s", userID, err)
		http.Error(w, "progress summary failed", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("marshal progress summary: %s", err)
		http.Error(w, "progress summary failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, summaryJson)
}
