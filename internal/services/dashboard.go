package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// DashboardReader is the storage needed to build a dashboard.
type DashboardReader interface {
	ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	QueryTransactions(ctx context.Context, ownerID string, f core.TransactionFilter) ([]core.Transaction, error)
}

var _ DashboardReader = (storage.Store)(nil)

// DashboardService computes the aggregate views for a month.
type DashboardService struct {
	store DashboardReader
}

func NewDashboardService(store DashboardReader) *DashboardService {
	return &DashboardService{store: store}
}

// Build loads the trailing twelve months ending with month and summarizes
// them. categoryID only narrows the category trend.
func (s *DashboardService) Build(ctx context.Context, ownerID, month, categoryID string) (core.Summary, error) {
	window, err := core.SummaryWindow(month)
	if err != nil {
		return core.Summary{}, err
	}

	var (
		txs  []core.Transaction
		cats []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.store.QueryTransactions(gctx, ownerID, core.TransactionFilter{Window: window})
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cats, err = s.store.ListCategories(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, fmt.Errorf("build dashboard: %w", err)
	}

	summary, err := core.Summarize(txs, cats, month, categoryID)
	if err != nil {
		return core.Summary{}, err
	}

	slog.DebugContext(ctx, "Dashboard built",
		"month", summary.Month,
		"transactions", len(txs),
		"balance", core.FormatAmount(summary.Totals.Balance))
	return summary, nil
}
