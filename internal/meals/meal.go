package meals

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/fittrack/internal/nutrition"

	"github.com/google/uuid"
)

var (
	ErrInvalidMeal  = errors.New("invalid meal")
	ErrMealNotFound = errors.New("meal not found")
	ErrUnknownUser  = errors.New("unknown user")
)

const (
	DateLayout = "2006-01-02"

	maxNameLength   = 64
	maxItemsPerMeal = 200
)

// Meal is one named meal of a day, e.g. breakfast, with the food eaten in it.
type Meal struct {
	ID      int                    `json:"id"`
	UserID  uuid.UUID              `json:"userId"`
	EatenOn time.Time              `json:"eatenOn"`
	Name    string                 `json:"name"`
	Items   []nutrition.IntakeItem `json:"items"`
}

func (m *Meal) Validate() error {
	var problems []string
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		problems = append(problems, "name must be set")
	}
	if len(m.Name) > maxNameLength {
		problems = append(problems, fmt.Sprintf("name longer than %d", maxNameLength))
	}
	if m.EatenOn.IsZero() {
		problems = append(problems, "eaten on must be set")
	}
	if m.Items == nil {
		m.Items = []nutrition.IntakeItem{}
	}
	if err := validateItems(m.Items); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMeal, strings.Join(problems, ", "))
	}
	return nil
}

func validateItems(items []nutrition.IntakeItem) error {
	if len(items) > maxItemsPerMeal {
		return fmt.Errorf("more than %d items", maxItemsPerMeal)
	}
	for _, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return errors.New("item name must be set")
		}
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Intake sums the items of every meal.
func Intake(meals []Meal) nutrition.Intake {
	var items []nutrition.IntakeItem
	for _, m := range meals {
		items = append(items, m.Items...)
	}
	return nutrition.SumIntake(items)
}

// ParseDate reads a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidMeal)
	}
	return d, nil
}
