package worker

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/sheets"
)

// LedgerWorker mirrors ledger events into a spreadsheet.
type LedgerWorker struct {
	mirror sheets.Mirror
}

func NewLedgerWorker(mirror sheets.Mirror) *LedgerWorker {
	return &LedgerWorker{mirror: mirror}
}

// Handle applies one event to the mirror. It is safe to call again with the
// same event: created rows replace any earlier copy of themselves.
func (w *LedgerWorker) Handle(ctx context.Context, ev *amqp.LedgerEvent) error {
	switch ev.Type {
	case amqp.EventTransactionsCreated:
		return w.handleCreated(ctx, ev)
	case amqp.EventTransactionDeleted:
		n, err := w.mirror.DeleteByID(ctx, ev.TransactionID)
		if err != nil {
			return fmt.Errorf("delete mirrored transaction %s: %w", ev.TransactionID, err)
		}
		slog.InfoContext(ctx, "Mirrored transaction deleted",
			"owner_id", ev.OwnerID,
			"transaction_id", ev.TransactionID,
			"rows", n)
		return nil
	case amqp.EventGroupDeleted:
		n, err := w.mirror.DeleteByGroup(ctx, ev.GroupID)
		if err != nil {
			return fmt.Errorf("delete mirrored group %s: %w", ev.GroupID, err)
		}
		slog.InfoContext(ctx, "Mirrored group deleted",
			"owner_id", ev.OwnerID,
			"group_id", ev.GroupID,
			"rows", n)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event", "type", ev.Type)
		return nil
	}
}

func (w *LedgerWorker) handleCreated(ctx context.Context, ev *amqp.LedgerEvent) error {
	if len(ev.Transactions) == 0 {
		return nil
	}

	// Drop rows left by an earlier delivery of this event.
	if group := ev.Transactions[0].GroupID; group != "" {
		if _, err := w.mirror.DeleteByGroup(ctx, group); err != nil {
			return fmt.Errorf("clear mirrored group %s: %w", group, err)
		}
	} else {
		for _, p := range ev.Transactions {
			if _, err := w.mirror.DeleteByID(ctx, p.ID); err != nil {
				return fmt.Errorf("clear mirrored transaction %s: %w", p.ID, err)
			}
		}
	}

	rows := make([]sheets.Row, len(ev.Transactions))
	for i, p := range ev.Transactions {
		rows[i] = toRow(p)
	}
	if err := w.mirror.AppendRows(ctx, rows); err != nil {
		return fmt.Errorf("append mirrored rows: %w", err)
	}

	slog.InfoContext(ctx, "Transactions mirrored",
		"owner_id", ev.OwnerID,
		"count", len(rows),
		"group_id", ev.Transactions[0].GroupID)
	return nil
}

func toRow(p amqp.TransactionPayload) sheets.Row {
	r := sheets.Row{
		ID:          p.ID,
		GroupID:     p.GroupID,
		Date:        p.Date,
		Kind:        kindLabel(p.Kind),
		Amount:      p.Amount,
		Description: p.Description,
		Category:    p.Category,
	}
	if p.CategoryID == "" || r.Category == "" {
		r.Category = core.Uncategorized
	}
	if p.IsCreditCard {
		r.Card = p.CardLabel
		if r.Card == "" {
			r.Card = "Cartão"
		}
	}
	return r
}

func kindLabel(kind string) string {
	if core.ParseKind(kind) == core.Income {
		return "Receita"
	}
	return "Despesa"
}
