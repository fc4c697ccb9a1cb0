package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/cache"
	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
	"golang.org/x/sync/singleflight"
)

const MaxProductImages = 4

type ImageUpload struct {
	Filename string
	Content  io.Reader
}

type NewProduct struct {
	Name        string
	Description string
	Price       domain.Money
	Stock       int
	Category    string
	SubCategory string
	Sizes       []string
	Bestseller  bool
	Images      []ImageUpload
}

type CatalogService struct {
	products repository.ProductRepository
	accounts repository.AccountRepository
	images   ImageStore
	cache    cache.ProductCache
	log      *slog.Logger
	sfg      singleflight.Group
	now      func() time.Time
}

func NewCatalogService(products repository.ProductRepository, accounts repository.AccountRepository,
	images ImageStore, cache cache.ProductCache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		products: products,
		accounts: accounts,
		images:   images,
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("products", func() (interface{}, error) {
		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "product cache get failed", "error", err)
		}

		products, err = s.products.List(ctx)
		if err != nil {
			return nil, err
		}
		if errSet := s.cache.SetProducts(ctx, products); errSet != nil {
			s.log.WarnContext(ctx, "product cache set failed", "error", errSet)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) Create(ctx context.Context, in NewProduct) (*domain.Product, error) {
	sizes, err := normalizeSizes(in.Sizes)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Price < 0 || in.Stock < 0 {
		return nil, fmt.Errorf("%w: price and stock must not be negative", ErrInvalidInput)
	}
	if len(in.Images) > MaxProductImages {
		return nil, fmt.Errorf("%w: at most %d per product", ErrTooManyImages, MaxProductImages)
	}

	uploaded := make([]domain.Image, 0, len(in.Images))
	for _, img := range in.Images {
		stored, err := s.images.Upload(ctx, img.Filename, img.Content)
		if err != nil {
			s.discardImages(ctx, uploaded)
			s.log.ErrorContext(ctx, "product image upload failed", "file", img.Filename, "error", err)
			return nil, providerError("image", err)
		}
		uploaded = append(uploaded, stored)
	}

	product := &domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Images:      uploaded,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Sizes:       sizes,
		Bestseller:  in.Bestseller,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.products.Create(ctx, product); err != nil {
		s.discardImages(ctx, uploaded)
		return nil, err
	}

	s.invalidate(ctx)
	s.log.InfoContext(ctx, "product created", "product_id", product.ID)
	return product, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	if u.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	if (u.Price != nil && *u.Price < 0) || (u.Stock != nil && *u.Stock < 0) {
		return nil, fmt.Errorf("%w: price and stock must not be negative", ErrInvalidInput)
	}
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if u.Sizes != nil {
		sizes, err := normalizeSizes(u.Sizes)
		if err != nil {
			return nil, err
		}
		u.Sizes = sizes
	}

	product, err := s.products.Update(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// Remove deletes the product. Image cleanup failures are logged only; the
// product is already gone at that point.
func (s *CatalogService) Remove(ctx context.Context, id string) error {
	product, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.discardImages(ctx, product.Images)
	s.invalidate(ctx)
	s.log.InfoContext(ctx, "product removed", "product_id", id)
	return nil
}

func (s *CatalogService) AddReview(ctx context.Context, accountID, productID string, rating int, comment string) (*domain.Product, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.AddReview(ctx, productID, domain.Review{
		UserID:    account.ID,
		Name:      account.Name,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

// InvalidateList drops the cached product list, e.g. after stock moved.
func (s *CatalogService) InvalidateList(ctx context.Context) {
	s.invalidate(ctx)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := s.cache.InvalidateProducts(ctx); err != nil {
		s.log.WarnContext(ctx, "product cache invalidate failed", "error", err)
	}
}

func (s *CatalogService) discardImages(ctx context.Context, images []domain.Image) {
	for _, img := range images {
		if err := s.images.Delete(ctx, img.PublicID); err != nil {
			s.log.WarnContext(ctx, "image delete failed", "public_id", img.PublicID, "error", err)
		}
	}
}

func normalizeSizes(sizes []string) ([]string, error) {
	seen := make(map[string]bool, len(sizes))
	out := make([]string, 0, len(sizes))
	for _, raw := range sizes {
		size := strings.TrimSpace(raw)
		if !domain.ValidSizeLabel(size) {
			return nil, fmt.Errorf("%w: size %q is not allowed", ErrInvalidInput, raw)
		}
		if !seen[size] {
			seen[size] = true
			out = append(out, size)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: at least one size is required", ErrInvalidInput)
	}
	return out, nil
}
