package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "INCOME"
	Expense Kind = "EXPENSE"
)

// MaxCategoryNameLength bounds category names.
const MaxCategoryNameLength = 64

// MaxCardLabelLength bounds the free-form credit card label.
const MaxCardLabelLength = 255

type (
	Kind string

	// Owner scopes every category and transaction of a ledger.
	Owner struct {
		ID    string
		Email string // natural key
	}

	Category struct {
		ID      string
		OwnerID string
		Name    string
	}

	Transaction struct {
		ID                string
		OwnerID           string
		Kind              Kind
		Amount            decimal.Decimal
		Date              Date
		Description       string // optional
		CategoryID        string // optional, EXPENSE only
		IsCreditCard      bool
		CardLabel         string // optional, only when IsCreditCard
		RecurrenceGroupID string // empty for standalone rows
		RecurrenceCount   int    // series length, 0 for standalone rows
	}

	// NewTransaction carries the raw fields of a create request.
	NewTransaction struct {
		Kind            string
		Amount          string
		Date            string
		Description     string
		CategoryID      string
		IsCreditCard    bool
		CardLabel       string
		IsRecurring     bool
		RecurrenceCount int
	}

	// TransactionFilter selects rows of one owner inside a window.
	TransactionFilter struct {
		Window        Window
		CategoryID    string
		CreditOnly    bool
		RecurringOnly bool
	}
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateName = errors.New("duplicate name")
	ErrNotFound      = errors.New("not found")
)

// ParseKind maps anything other than INCOME to EXPENSE.
func ParseKind(s string) Kind {
	if Kind(strings.ToUpper(strings.TrimSpace(s))) == Income {
		return Income
	}
	return Expense
}

func (k Kind) String() string {
	return string(k)
}

// IsRecurring reports whether the row belongs to a recurrence group.
func (t Transaction) IsRecurring() bool {
	return t.RecurrenceGroupID != ""
}

// Validate checks the invariants every stored transaction must hold.
func (t Transaction) Validate() error {
	if t.Kind != Income && t.Kind != Expense {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, t.Kind)
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if t.CategoryID != "" && t.Kind != Expense {
		return fmt.Errorf("%w: category is only allowed on expenses", ErrInvalidInput)
	}
	if t.CardLabel != "" && !t.IsCreditCard {
		return fmt.Errorf("%w: card label requires the credit card flag", ErrInvalidInput)
	}
	return nil
}

// Normalize validates the request and returns the base transaction it describes.
// Category and card label are dropped when they do not apply.
func (n NewTransaction) Normalize() (Transaction, error) {
	kind := ParseKind(n.Kind)

	amount, err := ParseAmount(n.Amount)
	if err != nil {
		return Transaction{}, err
	}

	date, err := ParseDate(n.Date)
	if err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		Kind:         kind,
		Amount:       amount,
		Date:         date,
		Description:  strings.TrimSpace(n.Description),
		IsCreditCard: n.IsCreditCard,
	}
	if kind == Expense {
		t.CategoryID = strings.TrimSpace(n.CategoryID)
	}
	if n.IsCreditCard {
		t.CardLabel = strings.TrimSpace(n.CardLabel)
		if len([]rune(t.CardLabel)) > MaxCardLabelLength {
			return Transaction{}, fmt.Errorf("%w: card label longer than %d characters", ErrInvalidInput, MaxCardLabelLength)
		}
	}
	return t, nil
}

// NormalizeCategoryName trims the name and enforces its bounds.
func NormalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: category name is empty", ErrInvalidInput)
	}
	if len([]rune(name)) > MaxCategoryNameLength {
		return "", fmt.Errorf("%w: category name longer than %d characters", ErrInvalidInput, MaxCategoryNameLength)
	}
	return name, nil
}

// Matches reports whether t passes the filter's predicates.
func (f TransactionFilter) Matches(t Transaction) bool {
	if !f.Window.Contains(t.Date.Time) {
		return false
	}
	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.CreditOnly && !t.IsCreditCard {
		return false
	}
	if f.RecurringOnly && !t.IsRecurring() {
		return false
	}
	return true
}
