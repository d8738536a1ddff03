package models

import (
	"fmt"
	"strings"
)

// Product maps to the `products` table: one sellable accessory identified by
// its combination of catalog dimensions.
type Product struct {
	ID          uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Price       *int   `gorm:"column:price" json:"price"`
	Description string `gorm:"column:description;size:500" json:"description"`
	IsActive    bool   `gorm:"column:is_active;default:true;index" json:"is_active"`

	CategoryID       uint  `gorm:"column:category_id;not null;uniqueIndex:uq_product_combination,priority:1" json:"category_id"`
	AccessoryBrandID uint  `gorm:"column:accessory_brand_id;not null;uniqueIndex:uq_product_combination,priority:2" json:"accessory_brand_id"`
	DeviceModelID    *uint `gorm:"column:device_model_id;uniqueIndex:uq_product_combination,priority:3" json:"device_model_id"`
	SeriesID         *uint `gorm:"column:series_id;uniqueIndex:uq_product_combination,priority:4" json:"series_id"`
	VariationID      *uint `gorm:"column:variation_id;uniqueIndex:uq_product_combination,priority:5" json:"variation_id"`
	ColorID          *uint `gorm:"column:color_id;uniqueIndex:uq_product_combination,priority:6" json:"color_id"`

	Category       *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	AccessoryBrand *AccessoryBrand `gorm:"foreignKey:AccessoryBrandID" json:"accessory_brand,omitempty"`
	DeviceModel    *DeviceModel    `gorm:"foreignKey:DeviceModelID" json:"device_model,omitempty"`
	Series         *Series         `gorm:"foreignKey:SeriesID" json:"series,omitempty"`
	Variation      *Variation      `gorm:"foreignKey:VariationID" json:"variation,omitempty"`
	Color          *Color          `gorm:"foreignKey:ColorID" json:"color,omitempty"`
	Images         []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// DisplayName joins the loaded dimensions in catalog order.
func (p Product) DisplayName() string {
	parts := make([]string, 0, 6)
	if p.Category != nil {
		parts = append(parts, p.Category.Name)
	}
	if p.AccessoryBrand != nil {
		parts = append(parts, p.AccessoryBrand.Name)
	}
	if p.DeviceModel != nil {
		parts = append(parts, p.DeviceModel.FullName())
	}
	if p.Series != nil {
		parts = append(parts, p.Series.Name)
	}
	if p.Variation != nil {
		parts = append(parts, p.Variation.Name)
	}
	if p.Color != nil {
		parts = append(parts, p.Color.Name)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("#%d", p.ID)
	}
	return strings.Join(parts, " ")
}

// UnitPrice returns the price, or 0 for "price on request" products.
func (p Product) UnitPrice() int {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

// HasPrice reports whether the product has a listed price.
func (p Product) HasPrice() bool {
	return p.Price != nil
}

// MainImage returns the main image path, falling back to the first image.
func (p Product) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.Path
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].Path
	}
	return ""
}

// ProductImage maps to the `product_images` table. Path is relative to the
// configured images directory.
type ProductImage struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Path      string `gorm:"column:path;size:500;not null" json:"path"`
	IsMain    bool   `gorm:"column:is_main;default:false" json:"is_main"`
	ProductID uint   `gorm:"column:product_id;not null;index" json:"product_id"`
	ColorID   *uint  `gorm:"column:color_id" json:"color_id"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
