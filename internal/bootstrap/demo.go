package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"storebot/internal/models"
)

type demoProduct struct {
	category, brand, model, series, color string
	price                                 int
	description                           string
}

var demoProducts = []demoProduct{
	{"Чехлы для телефонов", "Pitaka", "17 Pro", "Armor", "Черный", 4500, "Арамидный чехол Pitaka для iPhone 17 Pro"},
	{"Чехлы для телефонов", "Pitaka", "16 Pro", "Armor", "Черный", 4200, "Арамидный чехол Pitaka для iPhone 16 Pro"},
	{"Чехлы для телефонов", "Pitaka", "S24 Ultra", "Armor", "Черный", 4300, "Арамидный чехол Pitaka для Samsung S24 Ultra"},
	{"Зарядники", "Samsung", "S24 Ultra", "", "Черный", 2500, "Быстрое зарядное устройство Samsung 45W"},
	{"Зарядники", "Anker", "", "", "Белый", 3000, "Универсальное зарядное устройство Anker 65W"},
	{"Кабели", "Apple", "", "", "Белый", 1500, "Кабель Lightning to USB-C 1м"},
	{"Кабели", "Anker", "", "", "Черный", 800, "Кабель USB-C to USB-C 2м"},
}

// SeedDemo fills an empty catalog with a small accessory assortment. Running
// it twice does not duplicate rows.
func SeedDemo(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ids := map[string]uint{}
		named := func(kind string, row interface{}, name string, id func() uint) error {
			if err := tx.Where("name = ?", name).FirstOrCreate(row).Error; err != nil {
				return fmt.Errorf("seed %s %q: %w", kind, name, err)
			}
			ids[kind+":"+name] = id()
			return nil
		}

		for i, name := range []string{"Чехлы для телефонов", "Зарядники", "Кабели", "Наушники"} {
			row := models.Category{Name: name, SortOrder: i}
			if err := named("category", &row, name, func() uint { return row.ID }); err != nil {
				return err
			}
		}
		for _, name := range []string{"Pitaka", "Samsung", "Apple", "Anker"} {
			row := models.AccessoryBrand{Name: name}
			if err := named("brand", &row, name, func() uint { return row.ID }); err != nil {
				return err
			}
		}
		for _, name := range []string{"iPhone", "Samsung", "Xiaomi"} {
			row := models.DeviceBrand{Name: name}
			if err := named("device_brand", &row, name, func() uint { return row.ID }); err != nil {
				return err
			}
		}
		deviceModels := []struct{ brand, name string }{
			{"iPhone", "17 Pro"}, {"iPhone", "16 Pro"}, {"iPhone", "15 Pro"},
			{"Samsung", "S24 Ultra"}, {"Samsung", "S23 Ultra"},
		}
		for i, m := range deviceModels {
			brandID := ids["device_brand:"+m.brand]
			row := models.DeviceModel{Name: m.name, DeviceBrandID: &brandID, SortOrder: i}
			if err := tx.Where("name = ? AND device_brand_id = ?", m.name, brandID).FirstOrCreate(&row).Error; err != nil {
				return fmt.Errorf("seed device model %q: %w", m.name, err)
			}
			ids["model:"+m.name] = row.ID
		}
		for _, name := range []string{"Armor", "Slim", "MagSafe"} {
			row := models.Series{Name: name}
			if err := named("series", &row, name, func() uint { return row.ID }); err != nil {
				return err
			}
		}
		for i, name := range []string{"Черный", "Белый", "Синий", "Красный", "Зеленый"} {
			row := models.Color{Name: name, SortOrder: i}
			if err := named("color", &row, name, func() uint { return row.ID }); err != nil {
				return err
			}
		}

		optional := func(key string) *uint {
			id, ok := ids[key]
			if !ok {
				return nil
			}
			return &id
		}
		for _, p := range demoProducts {
			price := p.price
			row := models.Product{
				CategoryID:       ids["category:"+p.category],
				AccessoryBrandID: ids["brand:"+p.brand],
				DeviceModelID:    optional("model:" + p.model),
				SeriesID:         optional("series:" + p.series),
				ColorID:          optional("color:" + p.color),
				Price:            &price,
				Description:      p.description,
				IsActive:         true,
			}
			var count int64
			if err := tx.Model(&models.Product{}).Where("description = ?", p.description).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seed product %q: %w", p.description, err)
			}
		}
		return ensureOrderStatuses(tx)
	})
}
