package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents one Stratus product fed by an upstream partner API.
// SourceID is the stable external-facing slug and the idempotency key for
// "does this product already exist".
type Product struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	UUID      string    `gorm:"type:varchar(36);uniqueIndex" json:"uuid"`
	SourceID  string    `gorm:"type:varchar(255);uniqueIndex" json:"source_id" validate:"required,min=1,max=255"`
	Name      string    `gorm:"type:varchar(255)" json:"name" validate:"required,min=1,max=255"`
	Tagline   string    `gorm:"type:varchar(255)" json:"tagline" validate:"required,max=255"`
	URL       string    `gorm:"type:varchar(255)" json:"url" validate:"required,url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "stratus_products"
}

// BeforeCreate generates the UUID and a source_id fallback before insert
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.UUID == "" {
		p.UUID = uuid.New().String()
	}
	if p.SourceID == "" {
		p.SourceID = SlugFromName(p.Name)
	}
	return nil
}

// Validate checks the product fields against their validate tags
func (p *Product) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// SlugFromName derives a source_id slug from a product name
// ("clovis.app" -> "clovis-app").
func SlugFromName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, ".", "-")
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}

// FormatTitleCase capitalizes the first letter of each word while keeping
// existing caps like "AI" intact. Used for display names on the site.
func FormatTitleCase(text string) string {
	words := strings.Split(text, " ")
	for i, word := range words {
		if word == "" {
			continue
		}
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
