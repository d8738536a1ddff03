package catalog

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storebot/internal/models"
)

type fakeProduct struct {
	id   uint
	vals map[Dimension]uint
}

type fakeSource struct {
	products []fakeProduct
	names    map[Dimension]map[uint]string
}

func (f *fakeSource) match(sel Selection) []fakeProduct {
	var out []fakeProduct
	for _, p := range f.products {
		ok := true
		for d, id := range sel {
			if p.vals[d] != id {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeSource) distinct(dim Dimension, sel Selection) []uint {
	seen := map[uint]bool{}
	var ids []uint
	for _, p := range f.match(sel) {
		if !seen[p.vals[dim]] {
			seen[p.vals[dim]] = true
			ids = append(ids, p.vals[dim])
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeSource) CountOptions(dim Dimension, sel Selection) (int64, error) {
	return int64(len(f.distinct(dim, sel))), nil
}

func (f *fakeSource) ListOptions(dim Dimension, sel Selection, offset, limit int) ([]Option, error) {
	ids := f.distinct(dim, sel)
	var out []Option
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, Option{ID: ids[i], Name: f.names[dim][ids[i]]})
	}
	return out, nil
}

func (f *fakeSource) CountProducts(sel Selection) (int64, error) {
	return int64(len(f.match(sel))), nil
}

func (f *fakeSource) ListProducts(sel Selection, offset, limit int) ([]models.Product, error) {
	var out []models.Product
	matched := f.match(sel)
	for i := offset; i < len(matched) && len(out) < limit; i++ {
		out = append(out, models.Product{ID: matched[i].id})
	}
	return out, nil
}

func product(id uint, cat, brand, devBrand, model, series, color uint) fakeProduct {
	return fakeProduct{id: id, vals: map[Dimension]uint{
		Category: cat, Brand: brand, DeviceBrand: devBrand, DeviceModel: model, Series: series, Color: color,
	}}
}

// Mirrors the demo catalog: cases for three phones, chargers and cables.
func demoSource() *fakeSource {
	return &fakeSource{
		products: []fakeProduct{
			product(1, 1, 1, 1, 1, 1, 1),
			product(2, 1, 1, 1, 2, 1, 1),
			product(3, 1, 1, 2, 4, 1, 1),
			product(4, 2, 2, 2, 4, 0, 1),
			product(5, 2, 4, 0, 0, 0, 2),
			product(6, 3, 3, 0, 0, 0, 2),
			product(7, 3, 4, 0, 0, 0, 1),
		},
		names: map[Dimension]map[uint]string{
			Category: {1: "Чехлы", 2: "Зарядники", 3: "Кабели"},
		},
	}
}

func TestNextAlwaysAsksCategory(t *testing.T) {
	src := &fakeSource{products: []fakeProduct{product(1, 1, 1, 1, 1, 1, 1)}}
	step, err := NewEngine(src, 6).Next(Selection{})
	require.NoError(t, err)
	assert.Equal(t, StepChoose, step.Kind)
	assert.Equal(t, Category, step.Dimension)
	assert.EqualValues(t, 1, step.Total)
}

func TestNextSkipsSingleOptionsUpToChoice(t *testing.T) {
	e := NewEngine(demoSource(), 6)

	// Cases: only Pitaka, but two device brands.
	step, err := e.Next(Selection{Category: 1})
	require.NoError(t, err)
	assert.Equal(t, StepChoose, step.Kind)
	assert.Equal(t, DeviceBrand, step.Dimension)
	assert.Equal(t, uint(1), step.Selection[Brand])
	assert.False(t, step.Selection.Has(DeviceModel))
}

func TestNextAutoAdvancesToSingleProduct(t *testing.T) {
	e := NewEngine(demoSource(), 6)

	// Samsung cases: one model, one series, one color, one product.
	step, err := e.Next(Selection{Category: 1, Brand: 1, DeviceBrand: 2})
	require.NoError(t, err)
	assert.Equal(t, StepProduct, step.Kind)
	assert.Equal(t, uint(3), step.ProductID)
	assert.Equal(t, uint(4), step.Selection[DeviceModel])
	assert.Equal(t, uint(1), step.Selection[Color])
}

func TestNextTreatsUnsetAsValue(t *testing.T) {
	e := NewEngine(demoSource(), 6)

	// Chargers: Samsung (for S24) vs Anker (universal).
	step, err := e.Next(Selection{Category: 2})
	require.NoError(t, err)
	require.Equal(t, StepChoose, step.Kind)
	assert.Equal(t, Brand, step.Dimension)

	step, err = e.Next(Selection{Category: 2, Brand: 4})
	require.NoError(t, err)
	assert.Equal(t, StepProduct, step.Kind)
	assert.Equal(t, uint(5), step.ProductID)
	assert.Equal(t, uint(0), step.Selection[DeviceModel])
	assert.True(t, step.Selection.Has(DeviceModel))
}

func TestNextProductListAndEmpty(t *testing.T) {
	src := &fakeSource{products: []fakeProduct{
		product(1, 1, 1, 0, 0, 0, 0),
		product(2, 1, 1, 0, 0, 0, 0),
	}}
	e := NewEngine(src, 6)

	step, err := e.Next(Selection{Category: 1})
	require.NoError(t, err)
	assert.Equal(t, StepProducts, step.Kind)
	assert.EqualValues(t, 2, step.Total)

	step, err = e.Next(Selection{Category: 9})
	require.NoError(t, err)
	assert.Equal(t, StepEmpty, step.Kind)
}

func TestNextDoesNotMutateInput(t *testing.T) {
	sel := Selection{Category: 1, Brand: 1, DeviceBrand: 2}
	_, err := NewEngine(demoSource(), 6).Next(sel)
	require.NoError(t, err)
	assert.Len(t, sel, 3)
}

func TestOptionsPagingAndLabels(t *testing.T) {
	e := NewEngine(demoSource(), 2)

	page, err := e.Options(Category, Selection{}, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Чехлы", page.Items[0].Name)

	page, err = e.Options(Category, Selection{}, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Кабели", page.Items[0].Name)

	page, err = e.Options(DeviceModel, Selection{Category: 2, DeviceModel: 4}, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, uint(0), page.Items[0].ID)
	assert.Equal(t, DeviceModel.NoValueLabel(), page.Items[0].Name)
}

func TestOptionsRequireCategory(t *testing.T) {
	_, err := NewEngine(demoSource(), 6).Options(Brand, Selection{}, 0)
	assert.ErrorIs(t, err, ErrNoCategory)

	_, err = NewEngine(demoSource(), 6).Products(Selection{}, 0)
	assert.ErrorIs(t, err, ErrNoCategory)
}

func TestProductsPage(t *testing.T) {
	page, err := NewEngine(demoSource(), 2).Products(Selection{Category: 1}, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint(3), page.Items[0].ID)
}

func TestSelectionHelpers(t *testing.T) {
	sel, err := FromStrings(map[string]uint{"category": 1, "brand": 0, "color": 3})
	require.NoError(t, err)
	assert.True(t, sel.Has(Brand))

	cut := sel.Truncate(DeviceBrand)
	assert.Len(t, cut, 2)
	assert.False(t, cut.Has(Color))

	_, err = FromStrings(map[string]uint{"size": 1})
	assert.Error(t, err)
}
