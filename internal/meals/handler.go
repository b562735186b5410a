package meals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/nutrition"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=meals_test

const maxPageSize = 100

type mealsService interface {
	Add(ctx context.Context, userID uuid.UUID, meal Meal) (*Meal, error)
	UpdateItems(ctx context.Context, userID uuid.UUID, mealID int, items []nutrition.IntakeItem) (*Meal, error)
	Delete(ctx context.Context, userID uuid.UUID, mealID int) error
	List(ctx context.Context, userID uuid.UUID, page, size int) ([]Meal, int, error)
	Day(ctx context.Context, userID uuid.UUID, day time.Time) (*DayLog, error)
}

type Handler struct {
	service mealsService
}

func NewHandler(service mealsService) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/meals", h.HandleAdd).Methods("POST", "OPTIONS").Name("add-meal")
	r.HandleFunc("/meals/day/{date}", h.HandleDay).Methods("GET", "OPTIONS").Name("meals-day")
	r.HandleFunc("/meals/page/{page}/size/{size}", h.HandleList).Methods("GET", "OPTIONS").Name("list-meals")
	r.HandleFunc("/meals/{id}/items", h.HandleUpdateItems).Methods("PUT", "OPTIONS").Name("update-meal-items")
	r.HandleFunc("/meals/{id}", h.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-meal")
}

type AddMealRequest struct {
	Date  string                 `json:"date"`
	Name  string                 `json:"name"`
	Items []nutrition.IntakeItem `json:"items"`
}

type UpdateItemsRequest struct {
	Items []nutrition.IntakeItem `json:"items"`
}

type ListResponse struct {
	Meals []Meal `json:"meals"`
	Total int    `json:"total"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req AddMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("add meal, unmarshal json: %s", err)
		http.Error(w, "invalid meal", http.StatusBadRequest)
		return
	}
	eatenOn, err := ParseDate(req.Date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := h.service.Add(ctx, userID, Meal{
		EatenOn: eatenOn,
		Name:    req.Name,
		Items:   req.Items,
	})
	if err != nil {
		h.mealError(w, "add meal", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusCreated, added); err != nil {
		log.Errorf("write added meal: %s", err)
		http.Error(w, "add meal failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleUpdateItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.update-items")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	mealID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	var req UpdateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debugf("update meal items, unmarshal json: %s", err)
		http.Error(w, "invalid meal items", http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateItems(ctx, userID, mealID, req.Items)
	if err != nil {
		h.mealError(w, "update meal", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusOK, updated); err != nil {
		log.Errorf("write updated meal: %s", err)
		http.Error(w, "update meal failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	mealID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, bad id", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(ctx, userID, mealID); err != nil {
		h.mealError(w, "delete meal", userID, err)
		return
	}

	pkg.WriteTextResponseOK(w, "deleted")
}

func (h *Handler) HandleDay(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.day")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}
	day, err := ParseDate(mux.Vars(r)["date"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dayLog, err := h.service.Day(ctx, userID, day)
	if err != nil {
		h.mealError(w, "meals of day", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusOK, dayLog); err != nil {
		log.Errorf("write meals of day: %s", err)
		http.Error(w, "meals of day failed", http.StatusInternalServerError)
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.list")
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
	meals, total, err := h.service.List(ctx, userID, page-1, size)
	if err != nil {
		h.mealError(w, "list meals", userID, err)
		return
	}

	if err := pkg.WriteJSON(w, http.StatusOK, ListResponse{Meals: meals, Total: total}); err != nil {
		log.Errorf("write meals: %s", err)
		http.Error(w, "list meals failed", http.StatusInternalServerError)
	}
}

func (h *Handler) mealError(w http.ResponseWriter, action string, userID uuid.UUID, err error) {
	switch {
	case errors.Is(err, ErrInvalidMeal):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrMealNotFound):
		http.Error(w, "meal not found", http.StatusNotFound)
	default:
		log.Errorf("%s for %s: %s", action, userID, err)
		http.Error(w, action+" failed", http.StatusInternalServerError)
	}
}
