package models

// Category maps to the `categories` table (accessory category: cases, chargers, cables...).
type Category struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sort_order"`
}

func (Category) TableName() string {
	return "categories"
}

// AccessoryBrand maps to the `accessory_brands` table.
type AccessoryBrand struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sort_order"`
}

func (AccessoryBrand) TableName() string {
	return "accessory_brands"
}

// DeviceBrand maps to the `device_brands` table (brand of the device an accessory fits).
type DeviceBrand struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sort_order"`
}

func (DeviceBrand) TableName() string {
	return "device_brands"
}

// DeviceModel maps to the `device_models` table.
type DeviceModel struct {
	ID            uint         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name          string       `gorm:"column:name;size:100;not null" json:"name"`
	SortOrder     int          `gorm:"column:sort_order;default:0" json:"sort_order"`
	DeviceBrandID *uint        `gorm:"column:device_brand_id;index" json:"device_brand_id"`
	DeviceBrand   *DeviceBrand `gorm:"foreignKey:DeviceBrandID" json:"device_brand,omitempty"`
}

func (DeviceModel) TableName() string {
	return "device_models"
}

// FullName prefixes the model with its device brand ("iPhone 16 Pro").
func (m DeviceModel) FullName() string {
	if m.DeviceBrand != nil && m.DeviceBrand.Name != "" {
		return m.DeviceBrand.Name + " " + m.Name
	}
	return m.Name
}

// Series maps to the `series` table (product line, e.g. "Armor").
type Series struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sort_order"`
}

func (Series) TableName() string {
	return "series"
}

// Variation maps to the `variations` table. Products that share every
// browsable dimension differ by variation.
type Variation struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:200;not null;uniqueIndex" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sort_order"`
}

func (Variation) TableName() string {
	return "variations"
}

// Color maps to the `colors` table.
type Color struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	SortOrder int    `gorm:"column:sort_order;default:0" json:"sort_order"`
}

func (Color) TableName() string {
	return "colors"
}
