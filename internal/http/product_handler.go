package http

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/service"
	"github.com/go-chi/chi/v5"
)

type CatalogService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in service.NewProduct) (*domain.Product, error)
	Update(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error)
	Remove(ctx context.Context, id string) error
	AddReview(ctx context.Context, accountID, productID string, rating int, comment string) (*domain.Product, error)
}

// Form field names for product images, in display order.
var imageFields = []string{"image1", "image2", "image3", "image4"}

type ProductHandler struct {
	catalog       CatalogService
	maxUploadSize int64
}

func NewProductHandler(catalog CatalogService, maxUploadSize int64) *ProductHandler {
	return &ProductHandler{catalog: catalog, maxUploadSize: maxUploadSize}
}

type ProductsResponse struct {
	Success  bool             `json:"success"`
	Products []domain.Product `json:"products"`
}

type ProductResponse struct {
	Success bool            `json:"success"`
	Product *domain.Product `json:"product"`
}

type AddProductForm struct {
	Name        string       `json:"name" validate:"required,max=200"`
	Description string       `json:"description" validate:"max=5000"`
	Price       domain.Money `json:"price" validate:"gte=0"`
	Stock       int          `json:"stock" validate:"gte=0"`
	Category    string       `json:"category" validate:"required"`
	SubCategory string       `json:"subCategory"`
	Sizes       []string     `json:"sizes" validate:"required,min=1,dive,required"`
	Bestseller  bool         `json:"bestseller"`
}

type UpdateProductRequestDTO struct {
	ID          string        `json:"id" validate:"required"`
	Name        *string       `json:"name" validate:"omitempty,max=200"`
	Description *string       `json:"description" validate:"omitempty,max=5000"`
	Price       *domain.Money `json:"price" validate:"omitempty,gte=0"`
	Stock       *int          `json:"stock" validate:"omitempty,gte=0"`
	Category    *string       `json:"category"`
	SubCategory *string       `json:"subCategory"`
	Sizes       []string      `json:"sizes" validate:"omitempty,min=1,dive,required"`
	Bestseller  *bool         `json:"bestseller"`
}

type ProductIDRequestDTO struct {
	ID string `json:"id" validate:"required"`
}

type ReviewRequestDTO struct {
	ProductID string `json:"productId" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}

// GET /api/product/list
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Success: true, Products: products})
}

// GET /api/product/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductResponse{Success: true, Product: product})
}

// POST /api/product/add (multipart/form-data)
func (h *ProductHandler) Add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	form, err := parseProductForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	if !validateStruct(w, form) {
		return
	}

	images, closeAll, err := openImages(r.MultipartForm)
	defer closeAll()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	product, err := h.catalog.Create(r.Context(), service.NewProduct{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Stock:       form.Stock,
		Category:    form.Category,
		SubCategory: form.SubCategory,
		Sizes:       form.Sizes,
		Bestseller:  form.Bestseller,
		Images:      images,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ProductResponse{Success: true, Product: product})
}

// POST /api/product/update
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.catalog.Update(r.Context(), req.ID, domain.ProductUpdate{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Sizes:       req.Sizes,
		Bestseller:  req.Bestseller,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductResponse{Success: true, Product: product})
}

// POST /api/product/remove
func (h *ProductHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req ProductIDRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := h.catalog.Remove(r.Context(), req.ID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Product removed"})
}

// POST /api/product/review
func (h *ProductHandler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequestDTO
	if !decodeAndValidate(w, r, &req) {
		return
	}

	product, err := h.catalog.AddReview(r.Context(), accountIDFromContext(r.Context()), req.ProductID, req.Rating, req.Comment)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, ProductResponse{Success: true, Product: product})
}

func parseProductForm(r *http.Request) (*AddProductForm, error) {
	form := &AddProductForm{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		SubCategory: r.FormValue("subCategory"),
	}

	price, err := domain.ParseMoney(r.FormValue("price"))
	if err != nil {
		return nil, fmt.Errorf("price must be a decimal amount")
	}
	form.Price = price

	if raw := r.FormValue("stock"); raw != "" {
		if form.Stock, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("stock must be an integer")
		}
	}
	if raw := r.FormValue("bestseller"); raw != "" {
		if form.Bestseller, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("bestseller must be true or false")
		}
	}

	form.Sizes, err = parseSizes(r.FormValue("sizes"))
	if err != nil {
		return nil, err
	}
	return form, nil
}

// parseSizes accepts a JSON array (as the admin panel sends) or a comma list.
func parseSizes(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var sizes []string
		if err := json.Unmarshal([]byte(raw), &sizes); err != nil {
			return nil, fmt.Errorf("sizes must be a JSON array of strings")
		}
		return sizes, nil
	}
	return strings.Split(raw, ","), nil
}

func openImages(form *multipart.Form) ([]service.ImageUpload, func(), error) {
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	images := make([]service.ImageUpload, 0, len(imageFields))
	for _, field := range imageFields {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			return nil, closeAll, fmt.Errorf("cannot read %s", field)
		}
		files = append(files, f)
		images = append(images, service.ImageUpload{Filename: headers[0].Filename, Content: f})
	}
	return images, closeAll, nil
}
