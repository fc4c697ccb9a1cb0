package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
)

// stockReserver takes stock for a set of line items. Each product is
// decremented with a conditional update; if one fails, the products already
// decremented are given their stock back.
type stockReserver struct {
	products repository.ProductRepository
	log      *slog.Logger
}

type stockLine struct {
	productID string
	name      string
	qty       int
}

func demandOf(items []domain.LineItem) []stockLine {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ProductID] = it.Name
	}

	demand := domain.StockDemand(items)
	lines := make([]stockLine, 0, len(demand))
	for pid, qty := range demand {
		lines = append(lines, stockLine{productID: pid, name: names[pid], qty: qty})
	}
	// Fixed order keeps concurrent reservations from interleaving oddly
	sort.Slice(lines, func(i, j int) bool { return lines[i].productID < lines[j].productID })
	return lines
}

func (r *stockReserver) reserve(ctx context.Context, items []domain.LineItem) error {
	lines := demandOf(items)

	for i, line := range lines {
		err := r.products.DecrementStock(ctx, line.productID, line.qty)
		if err == nil {
			continue
		}

		r.restore(ctx, lines[:i])
		if errors.Is(err, repository.ErrInsufficientStock) {
			return fmt.Errorf("%w: %s", ErrInsufficientStock, line.name)
		}
		if errors.Is(err, repository.ErrProductNotFound) {
			return fmt.Errorf("%w: %s", ErrProductNotFound, line.name)
		}
		return err
	}
	return nil
}

func (r *stockReserver) release(ctx context.Context, items []domain.LineItem) {
	r.restore(ctx, demandOf(items))
}

func (r *stockReserver) restore(ctx context.Context, lines []stockLine) {
	ctx = context.WithoutCancel(ctx)
	for _, line := range lines {
		if err := r.products.IncrementStock(ctx, line.productID, line.qty); err != nil {
			r.log.ErrorContext(ctx, "failed to restore stock",
				"product_id", line.productID, "quantity", line.qty, "error", err)
		}
	}
}
