//go:build integration

package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestRoutineFlow() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.registerAndLogin(ctx, "routine@example.com", "long-enough-pass")

	status, respBytes := s.doRequest(ctx, "POST", "/routine/days", token, map[string]any{
		"name":        "Monday - legs",
		"scheduledOn": "2026-03-02",
	})
	require.Equal(t, http.StatusCreated, status, string(respBytes))
	var day struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &day))

	exercisesPath := "/routine/days/" + strconv.Itoa(day.ID) + "/exercises"
	var exerciseIDs []int
	for _, name := range []string{"Squat", "Lunge"} {
		status, respBytes = s.doRequest(ctx, "POST", exercisesPath, token, map[string]any{
			"name":     name,
			"reps":     10,
			"weightKg": 60,
		})
		require.Equal(t, http.StatusCreated, status, string(respBytes))
		var exercise struct {
			ID     int    `json:"id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.Unmarshal(respBytes, &exercise))
		assert.Equal(t, "pending", exercise.Status)
		exerciseIDs = append(exerciseIDs, exercise.ID)
	}

	status, respBytes = s.doRequest(ctx, "POST", "/routine/exercises/"+strconv.Itoa(exerciseIDs[0])+"/toggle", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":`+strconv.Itoa(exerciseIDs[0])+`,"status":"done"}`, string(respBytes))

	status, _ = s.doRequest(ctx, "PUT", "/routine/exercises/"+strconv.Itoa(exerciseIDs[1]), token, map[string]any{
		"name":     "Walking lunge",
		"reps":     12,
		"weightKg": 20,
	})
	require.Equal(t, http.StatusOK, status)

	status, respBytes = s.doRequest(ctx, "GET", "/routine/days", token, nil)
	require.Equal(t, http.StatusOK, status)
	var days []struct {
		Name      string `json:"name"`
		Done      int    `json:"done"`
		Total     int    `json:"total"`
		Exercises []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &days))
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Done)
	assert.Equal(t, 2, days[0].Total)
	assert.Equal(t, "Walking lunge", days[0].Exercises[1].Name)

	// someone else's token cannot touch the routine
	otherToken := s.registerAndLogin(ctx, "routine-other@example.com", "long-enough-pass")
	status, _ = s.doRequest(ctx, "DELETE", "/routine/days/"+strconv.Itoa(day.ID), otherToken, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.doRequest(ctx, "DELETE", "/routine/days/"+strconv.Itoa(day.ID), token, nil)
	require.Equal(t, http.StatusOK, status)

	var left int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT count(*) FROM routine_exercise WHERE day_id = $1`, day.ID).Scan(&left))
	assert.Zero(t, left)
}

func (s *IntegrationTestSuite) TestMealLog() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.registerAndLogin(ctx, "meals@example.com", "long-enough-pass")

	// without a profile the day is listed with no report
	status, respBytes := s.doRequest(ctx, "GET", "/meals/day/2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(respBytes), "report")

	status, _ = s.doRequest(ctx, "PUT", "/profile", token, map[string]any{
		"name":           "Ana",
		"weightKg":       70,
		"heightCm":       175,
		"ageYears":       25,
		"sex":            "male",
		"activityLevel":  "moderate",
		"goal":           "loss",
		"targetWeightKg": 65,
	})
	require.Equal(t, http.StatusOK, status)

	status, respBytes = s.doRequest(ctx, "POST", "/meals", token, map[string]any{
		"date": "2026-03-02",
		"name": "Breakfast",
		"items": []map[string]any{
			{"name": "oats", "calories": 800, "proteinG": 30, "carbsG": 60, "fatG": 12},
		},
	})
	require.Equal(t, http.StatusCreated, status, string(respBytes))
	var breakfast struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &breakfast))

	status, _ = s.doRequest(ctx, "POST", "/meals", token, map[string]any{
		"date": "2026-03-02",
		"name": "Lunch",
		"items": []map[string]any{
			{"name": "rice", "calories": 497, "proteinG": 20, "carbsG": 40, "fatG": 8},
		},
	})
	require.Equal(t, http.StatusCreated, status)

	status, respBytes = s.doRequest(ctx, "GET", "/meals/day/2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, status)
	var dayLog struct {
		Meals []struct {
			Name string `json:"name"`
		} `json:"meals"`
		Consumed struct {
			Calories float64 `json:"calories"`
			Items    int     `json:"items"`
		} `json:"consumed"`
		Report struct {
			Progress struct {
				CaloriesPct int `json:"caloriesPct"`
			} `json:"progress"`
			Remaining struct {
				Calories float64 `json:"calories"`
			} `json:"remaining"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &dayLog))
	require.Len(t, dayLog.Meals, 2)
	assert.Equal(t, "Breakfast", dayLog.Meals[0].Name)
	assert.Equal(t, 1297.0, dayLog.Consumed.Calories)
	assert.Equal(t, 2, dayLog.Consumed.Items)
	assert.Equal(t, 50, dayLog.Report.Progress.CaloriesPct)
	assert.Equal(t, 1297.0, dayLog.Report.Remaining.Calories)

	// emptying breakfast drops it from the sum
	status, _ = s.doRequest(ctx, "PUT", "/meals/"+strconv.Itoa(breakfast.ID)+"/items", token, map[string]any{
		"items": []map[string]any{},
	})
	require.Equal(t, http.StatusOK, status)

	status, respBytes = s.doRequest(ctx, "GET", "/meals/day/2026-03-02", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(respBytes, &dayLog))
	assert.Equal(t, 497.0, dayLog.Consumed.Calories)

	status, respBytes = s.doRequest(ctx, "GET", "/meals/page/1/size/10", token, nil)
	require.Equal(t, http.StatusOK, status)
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &list))
	assert.Equal(t, 2, list.Total)

	status, _ = s.doRequest(ctx, "DELETE", "/meals/"+strconv.Itoa(breakfast.ID), token, nil)
	require.Equal(t, http.StatusOK, status)

	var left int
	require.NoError(t, s.DB.QueryRowContext(ctx, `SELECT count(*) FROM meal WHERE name = 'Lunch'`).Scan(&left))
	assert.Equal(t, 1, left)
}
