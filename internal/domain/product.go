package domain

import "time"

// PlaceholderImageURL is used when a product was created without an upload.
// A record carrying this URL never has a PublicID.
const PlaceholderImageURL = "https://res.cloudinary.com/demo/image/upload/v1/products/placeholder.png"

// Product is the catalog record. The identifier is store-assigned and
// immutable; CreatedAt is set once at creation.
type Product struct {
	ID          int64     `gorm:"primaryKey" json:"id,string"`
	Name        string    `gorm:"index;size:200" json:"name"`
	Price       float64   `json:"price"`
	Category    string    `gorm:"index;size:120" json:"category"`
	Description string    `json:"description"`
	ImageURL    string    `gorm:"size:1024" json:"imageUrl"`
	// PublicID references the hosted image for later deletion. It is nil
	// exactly when ImageURL is the placeholder.
	PublicID  *string   `gorm:"size:255" json:"publicId"`
	InStock   bool      `json:"inStock"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "products"
}

// HasHostedImage reports whether the record owns an image on the media host.
func (p *Product) HasHostedImage() bool {
	return p.PublicID != nil && *p.PublicID != ""
}
