// Package reports is the one place net metrics are computed. Every dashboard
// reads sales minus sale-returns from here rather than re-deriving it.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hbarretto/franchisepos-backend/internal/scope"
	pkgerrors "github.com/hbarretto/franchisepos-backend/pkg/errors"
)

// Summary reconciles sales against sale-type returns for one scope and
// window. All amounts are integer cents.
type Summary struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`

	GrossSalesCents  int64 `json:"gross_sales_cents"`
	ReturnsCents     int64 `json:"returns_cents"`
	NetSalesCents    int64 `json:"net_sales_cents"`
	SaleCount        int64 `json:"sale_count"`
	ReturnCount      int64 `json:"return_count"`
	NetTransactions  int64 `json:"net_transactions"`
	ItemsSold        int64 `json:"items_sold"`
	ItemsReturned    int64 `json:"items_returned"`
	NetItems         int64 `json:"net_items"`
	AvgNetSaleCents  int64 `json:"avg_net_sale_cents"`
}

// Service produces the summary report.
type Service interface {
	Summarize(ctx context.Context, sc scope.Scope, from, to *time.Time) (*Summary, error)
}

type service struct {
	repo Repository
}

// NewService wires the reports service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

// Summarize computes net metrics for the scope and window.
func (s *service) Summarize(ctx context.Context, sc scope.Scope, from, to *time.Time) (*Summary, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window end precedes start")
	}

	sold, err := s.repo.SalesAggregate(ctx, sc, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating sales")
	}
	refunded, err := s.repo.SaleReturnsAggregate(ctx, sc, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregating returns")
	}

	summary := &Summary{
		From:            from,
		To:              to,
		GrossSalesCents: sold.TotalCents,
		ReturnsCents:    refunded.TotalCents,
		NetSalesCents:   sold.TotalCents - refunded.TotalCents,
		SaleCount:       sold.Count,
		ReturnCount:     refunded.Count,
		NetTransactions: sold.Count - refunded.Count,
		ItemsSold:       sold.ItemQty,
		ItemsReturned:   refunded.ItemQty,
		NetItems:        sold.ItemQty - refunded.ItemQty,
	}
	if summary.NetTransactions > 0 {
		summary.AvgNetSaleCents = decimal.NewFromInt(summary.NetSalesCents).
			Div(decimal.NewFromInt(summary.NetTransactions)).
			Round(0).
			IntPart()
	}
	return summary, nil
}
