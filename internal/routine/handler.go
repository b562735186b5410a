package routine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=routine_test

const dateLayout = "2006-01-02"

type routineService interface {
	AddDay(ctx context.Context, userID uuid.UUID, day Day) (*Day, error)
	DeleteDay(ctx context.Context, userID uuid.UUID, dayID int) error
	Days(ctx context.Context, userID uuid.UUID) ([]Day, error)
	AddExercise(ctx context.Context, userID uuid.UUID, dayID int, exercise Exercise) (*Exercise, error)
	UpdateExercise(ctx context.Context, userID uuid.UUID, exercise Exercise) (*Exercise, error)
	ToggleExercise(ctx context.Context, userID uuid.UUID, exerciseID int) (Status, error)
	DeleteExercise(ctx context.Context, userID uuid.UUID, exerciseID int) error
}

type Handler struct {
	service routineService
}

func NewHandler(service routineService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/routine/days", h.HandleDays).Methods("GET", "OPTIONS").Name("routine-days")
	r.HandleFunc("/routine/days", h.HandleAddDay).Methods("POST", "OPTIONS").Name("add-routine-day")
	r.HandleFunc("/routine/days/{id}", h.HandleDeleteDay).Methods("DELETE", "OPTIONS").Name("delete-routine-day")
	r.HandleFunc("/routine/days/{id}/exercises", h.HandleAddExercise).Methods("POST", "OPTIONS").Name("add-routine-exercise")
	r.HandleFunc("/routine/exercises/{id}", h.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("update-routine-exercise")
	r.HandleFunc("/routine/exercises/{id}", h.HandleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-routine-exercise")
	r.HandleFunc("/routine/exercises/{id}/toggle", h.HandleToggleExercise).Methods("POST", "OPTIONS").Name("toggle-routine-exercise")
}

type AddDayRequest struct {
	Name        string `json:"name"`
	ScheduledOn string `json:"scheduledOn"`
}

type ExerciseRequest struct {
	Name     string  `json:"name"`
	Reps     int     `json:"reps"`
	WeightKg float64 `json:"weightKg"`
}

type DayResponse struct {
	Day
	Done  int `json:"done"`
	Total int `json:"total"`
}

type ToggleResponse struct {
	ID     int    `json:"id"`
	Status Status `json:"status"`
}

func (h *Handler) HandleDays(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.days")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	days, err := h.service.Days(ctx, userID)
	if err != nil {
		log.Errorf("routine days for %s: %s", userID, err)
		http.Error(w, "get routine failed", http.StatusInternalServerError)
		return
	}

	resp := make([]DayResponse, 0, len(days))
	for _, d := range days {
		done, total := d.Progress()
		resp = append(resp, DayResponse{Day: d, Done: done, Total: total})
	}

	if err := pkg.WriteJSON(w, http.StatusOK, resp); err != nil {
		log.Errorf("write routine days: %s", err)
		http.Error(w, "get routine failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleAddDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.add-day")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req AddDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("add routine day, unmarshal json: %s", err)
		http.Error(w, "invalid routine day", http.StatusBadRequest)
		return
	}
	scheduledOn, err := time.Parse(dateLayout, req.ScheduledOn)
	if err != nil {
		http.Error(w, "error, scheduled on must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	added, err := h.service.AddDay(ctx, userID, Day{Name: req.Name, ScheduledOn: scheduledOn})
	if err != nil {
		h.routineError(w, "add routine day", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusCreated, added); err != nil {
		log.Errorf("write added routine day: %s", err)
		http.Error(w, "add routine day failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleDeleteDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.delete-day")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	dayID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteDay(ctx, userID, dayID); err != nil {
		h.routineError(w, "delete routine day", userID, err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) HandleAddExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.add-exercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	dayID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	var req ExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("add routine exercise, unmarshal json: %s", err)
		http.Error(w, "invalid exercise", http.StatusBadRequest)
		return
	}

	added, err := h.service.AddExercise(ctx, userID, dayID, Exercise{
		Name:     req.Name,
		Reps:     req.Reps,
		WeightKg: req.WeightKg,
	})
	if err != nil {
		h.routineError(w, "add routine exercise", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusCreated, added); err != nil {
		log.Errorf("write added exercise: %s", err)
		http.Error(w, "add exercise failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.update-exercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	var req ExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("update routine exercise, unmarshal json: %s", err)
		http.Error(w, "invalid exercise", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateExercise(ctx, userID, Exercise{
		ID:       exerciseID,
		Name:     req.Name,
		Reps:     req.Reps,
		WeightKg: req.WeightKg,
	})
	if err != nil {
		h.routineError(w, "update routine exercise", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusOK, updated); err != nil {
		log.Errorf("write updated exercise: %s", err)
		http.Error(w, "update exercise failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleToggleExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.toggle-exercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	status, err := h.service.ToggleExercise(ctx, userID, exerciseID)
	if err != nil {
		h.routineError(w, "toggle routine exercise", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusOK, ToggleResponse{ID: exerciseID, Status: status}); err != nil {
		log.Errorf("write toggled exercise: %s", err)
		http.Error(w, "toggle exercise failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.routine.delete-exercise")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	exerciseID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteExercise(ctx, userID, exerciseID); err != nil {
		h.routineError(w, "delete routine exercise", userID, err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) routineError(w http.ResponseWriter, action string, userID uuid.UUID, err error) {
	switch {
	case errors.Is(err, ErrInvalidRoutine):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDayNotFound):
		http.Error(w, "routine day not found", http.StatusNotFound)
	case errors.Is(err, ErrExerciseNotFound):
		http.Error(w, "exercise not found", http.StatusNotFound)
	default:
		log.Errorf("%s for %s: %s", action, userID, err)
		http.Error(w, action+" failed", http.StatusInternalServerError)
	}
}
