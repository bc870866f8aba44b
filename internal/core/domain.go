package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category labels form a closed set; anything else is coerced to
// CategoryOther before a record enters the ledger.
const (
	CategoryFood          Category = "Еда"
	CategoryTransport     Category = "Транспорт"
	CategoryHousing       Category = "Жилье"
	CategoryEntertainment Category = "Развлечения"
	CategoryShopping      Category = "Покупки"
	CategoryHealth        Category = "Здоровье"
	CategoryOther         Category = "Прочее"
)

type (
	Category string

	// Date is a calendar date with no time-of-day component.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// Expense is a single ledger record. Immutable once created; the only
	// way to change one is to delete it and capture a new one.
	Expense struct {
		ID          string   `json:"id"`
		Amount      Money    `json:"amount"`
		Category    Category `json:"category"`
		Description string   `json:"description"`
		Date        Date     `json:"date"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyID          = errors.New("empty id")
	ErrUnknownCategory  = errors.New("unknown category")
)

// Categories returns the closed category set in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryHousing,
		CategoryEntertainment,
		CategoryShopping,
		CategoryHealth,
		CategoryOther,
	}
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryHousing,
		CategoryEntertainment, CategoryShopping, CategoryHealth, CategoryOther:
		return true
	}
	return false
}

// NormalizeCategory maps free-form category text onto the closed set.
// Unrecognized or empty values become CategoryOther.
func NormalizeCategory(s string) Category {
	c := Category(strings.TrimSpace(s))
	if c.IsValid() {
		return c
	}
	return CategoryOther
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses an ISO YYYY-MM-DD date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.AddDate(0, 0, n))
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// MarshalJSON encodes the date as a bare YYYY-MM-DD string, matching the
// ledger's storage format.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.ISO() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NewExpense builds a validated record with a fresh ID. The category is
// normalized onto the closed set; an empty description is rejected.
func NewExpense(amount Money, category string, description string, date Date) (Expense, error) {
	e := Expense{
		ID:          uuid.NewString(),
		Amount:      amount,
		Category:    NormalizeCategory(category),
		Description: strings.TrimSpace(description),
		Date:        date,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	return e, nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !e.Category.IsValid() {
		return ErrUnknownCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return e.Date.Validate()
}
