package domain

import (
	"strings"
	"time"
)

type Image struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"public_id"`
}

type Review struct {
	UserID    string    `bson:"user_id" json:"user_id"`
	Name      string    `bson:"name" json:"name"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

type Product struct {
	ID          string    `bson:"_id,omitempty" json:"_id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"`
	Price       Money     `bson:"price" json:"price"`
	Stock       int       `bson:"stock" json:"stock"`
	Images      []Image   `bson:"images" json:"images"`
	Category    string    `bson:"category" json:"category"`
	SubCategory string    `bson:"sub_category" json:"subCategory"`
	Sizes       []string  `bson:"sizes" json:"sizes"`
	Bestseller  bool      `bson:"bestseller" json:"bestseller"`
	Reviews     []Review  `bson:"reviews" json:"reviews"`
	Rating      float64   `bson:"rating" json:"rating"`
	CreatedAt   time.Time `bson:"created_at" json:"date"`
}

func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// ValidSizeLabel reports whether a size can be used as a cart key.
// Cart entries are stored as document field names, which forbid dots and a
// leading dollar sign.
func ValidSizeLabel(size string) bool {
	return size != "" && !strings.Contains(size, ".") && !strings.HasPrefix(size, "$")
}

// ProductUpdate carries the fields an admin may change; nil means unchanged.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *Money
	Stock       *int
	Category    *string
	SubCategory *string
	Sizes       []string
	Bestseller  *bool
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Stock == nil &&
		u.Category == nil && u.SubCategory == nil && u.Sizes == nil && u.Bestseller == nil
}
