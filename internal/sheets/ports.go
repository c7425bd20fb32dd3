package sheets

import (
	"context"
)

// Column order of the mirrored sheet.
const (
	ColID = iota
	ColGroup
	ColDate
	ColKind
	ColAmount
	ColDescription
	ColCategory
	ColCard
	columnCount
)

// Header is the first row of the mirrored sheet.
var Header = []string{"ID", "Grupo", "Data", "Tipo", "Valor", "Descricao", "Categoria", "Cartao"}

// Row is one mirrored ledger transaction, already rendered as text.
type Row struct {
	ID          string
	GroupID     string
	Date        string
	Kind        string
	Amount      string
	Description string
	Category    string
	Card        string
}

// Values returns the row in column order.
func (r Row) Values() []any {
	return []any{r.ID, r.GroupID, r.Date, r.Kind, r.Amount, r.Description, r.Category, r.Card}
}

// Ports for outbound adapters.
type (
	RowWriter interface {
		AppendRows(ctx context.Context, rows []Row) error
	}

	// RowDeleter removes mirrored rows and reports how many matched.
	RowDeleter interface {
		DeleteByID(ctx context.Context, id string) (int, error)
		DeleteByGroup(ctx context.Context, groupID string) (int, error)
	}

	Mirror interface {
		RowWriter
		RowDeleter
	}
)
