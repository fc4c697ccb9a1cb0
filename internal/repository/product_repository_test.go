package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(name string, stock int) *domain.Product {
	return &domain.Product{
		Name:     name,
		Price:    2500,
		Stock:    stock,
		Sizes:    []string{"S", "M", "L"},
		Category: "Men",
	}
}

func TestProductRepository_CRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newTestProduct("Shirt", 3)
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", got.Name)
	assert.Equal(t, domain.Money(2500), got.Price)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)

	price := domain.Money(3000)
	updated, err := repo.Update(ctx, p.ID, domain.ProductUpdate{Price: &price, Sizes: []string{"M"}})
	require.NoError(t, err)
	assert.Equal(t, price, updated.Price)
	assert.Equal(t, []string{"M"}, updated.Sizes)

	other := newTestProduct("Hat", 1)
	require.NoError(t, repo.Create(ctx, other))

	many, err := repo.GetMany(ctx, []string{p.ID, other.ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, many, 2)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deleted.ID)
	_, err = repo.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductRepository_AddReview(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newTestProduct("Shirt", 3)
	require.NoError(t, repo.Create(ctx, p))

	_, err := repo.AddReview(ctx, p.ID, domain.Review{UserID: "u1", Rating: 4, Comment: "$nice", CreatedAt: time.Now()})
	require.NoError(t, err)
	got, err := repo.AddReview(ctx, p.ID, domain.Review{UserID: "u2", Rating: 5, CreatedAt: time.Now()})
	require.NoError(t, err)

	assert.Len(t, got.Reviews, 2)
	assert.Equal(t, "$nice", got.Reviews[0].Comment)
	assert.InDelta(t, 4.5, got.Rating, 0.001)
}

func TestProductRepository_DecrementStock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newTestProduct("Shirt", 3)
	require.NoError(t, repo.Create(ctx, p))

	assert.ErrorIs(t, repo.DecrementStock(ctx, p.ID, 5), ErrInsufficientStock)
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	assert.ErrorIs(t, repo.DecrementStock(ctx, "missing", 1), ErrProductNotFound)

	require.NoError(t, repo.DecrementStock(ctx, p.ID, 2))
	require.NoError(t, repo.IncrementStock(ctx, p.ID, 1))
	got, err = repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Stock)
}

func TestProductRepository_DecrementStockConcurrent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewProductRepository(db)
	ctx := context.Background()

	p := newTestProduct("Limited", 5)
	require.NoError(t, repo.Create(ctx, p))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.DecrementStock(ctx, p.ID, 1); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, won)
	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}
