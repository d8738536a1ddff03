// Package catalog walks the product catalog dimension by dimension, skipping
// every step that offers no real choice.
package catalog

import (
	"errors"
	"fmt"

	"storebot/internal/models"
	"storebot/internal/pkg/paging"
)

// Option is one distinct value of a dimension. ID 0 stands for "unset".
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Source is the storage the engine queries. Only active products count.
type Source interface {
	CountOptions(dim Dimension, sel Selection) (int64, error)
	ListOptions(dim Dimension, sel Selection, offset, limit int) ([]Option, error)
	CountProducts(sel Selection) (int64, error)
	ListProducts(sel Selection, offset, limit int) ([]models.Product, error)
}

// StepKind tells the caller what to render next.
type StepKind int

const (
	StepChoose StepKind = iota
	StepProducts
	StepProduct
	StepEmpty
)

func (k StepKind) String() string {
	switch k {
	case StepChoose:
		return "choose"
	case StepProducts:
		return "products"
	case StepProduct:
		return "product"
	case StepEmpty:
		return "empty"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is the outcome of resolving a selection. Selection includes every
// value the engine picked on its own.
type Step struct {
	Kind      StepKind  `json:"-"`
	Name      string    `json:"kind"`
	Dimension Dimension `json:"dimension,omitempty"`
	Selection Selection `json:"selection"`
	ProductID uint      `json:"product_id,omitempty"`
	Total     int64     `json:"total"`
}

// OptionPage is one page of dimension values.
type OptionPage struct {
	Dimension Dimension `json:"dimension"`
	Items     []Option  `json:"items"`
	Total     int64     `json:"total"`
	Page      int       `json:"page"`
	Pages     int       `json:"pages"`
}

// ProductPage is one page of products matching a full selection.
type ProductPage struct {
	Items []models.Product `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Pages int              `json:"pages"`
}

var ErrNoCategory = errors.New("category is not selected")

type Engine struct {
	src      Source
	pageSize int
}

func NewEngine(src Source, pageSize int) *Engine {
	if pageSize <= 0 {
		pageSize = 6
	}
	return &Engine{src: src, pageSize: pageSize}
}

func (e *Engine) PageSize() int {
	return e.pageSize
}

// Next resolves sel to the first dimension that needs a user decision, or to
// the product(s) at the end of the chain. Category is always asked.
func (e *Engine) Next(sel Selection) (Step, error) {
	if !sel.Has(Category) {
		total, err := e.src.CountOptions(Category, Selection{})
		if err != nil {
			return Step{}, fmt.Errorf("count categories: %w", err)
		}
		return newStep(StepChoose, Category, Selection{}, total), nil
	}

	resolved := sel.Clone()
	for _, dim := range Dimensions[1:] {
		if resolved.Has(dim) {
			continue
		}
		n, err := e.src.CountOptions(dim, resolved)
		if err != nil {
			return Step{}, fmt.Errorf("count %s options: %w", dim, err)
		}
		switch {
		case n == 0:
			continue
		case n == 1:
			opts, err := e.src.ListOptions(dim, resolved, 0, 1)
			if err != nil {
				return Step{}, fmt.Errorf("list %s options: %w", dim, err)
			}
			if len(opts) == 1 {
				resolved[dim] = opts[0].ID
			}
		default:
			return newStep(StepChoose, dim, resolved, n), nil
		}
	}

	total, err := e.src.CountProducts(resolved)
	if err != nil {
		return Step{}, fmt.Errorf("count products: %w", err)
	}
	switch total {
	case 0:
		return newStep(StepEmpty, "", resolved, 0), nil
	case 1:
		items, err := e.src.ListProducts(resolved, 0, 1)
		if err != nil {
			return Step{}, fmt.Errorf("list products: %w", err)
		}
		if len(items) == 0 {
			return newStep(StepEmpty, "", resolved, 0), nil
		}
		step := newStep(StepProduct, "", resolved, 1)
		step.ProductID = items[0].ID
		return step, nil
	}
	return newStep(StepProducts, "", resolved, total), nil
}

// Options returns a page of values for dim under sel. Out of range pages wrap.
func (e *Engine) Options(dim Dimension, sel Selection, page int) (*OptionPage, error) {
	if dim != Category && !sel.Has(Category) {
		return nil, ErrNoCategory
	}
	scope := sel.Truncate(dim)
	total, err := e.src.CountOptions(dim, scope)
	if err != nil {
		return nil, fmt.Errorf("count %s options: %w", dim, err)
	}
	page, pages := paging.Count(total, e.pageSize, page)
	out := &OptionPage{Dimension: dim, Total: total, Page: page, Pages: pages, Items: []Option{}}
	if total == 0 {
		return out, nil
	}
	items, err := e.src.ListOptions(dim, scope, paging.Offset(e.pageSize, page), e.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list %s options: %w", dim, err)
	}
	for i := range items {
		if items[i].ID == 0 {
			items[i].Name = dim.NoValueLabel()
		}
	}
	out.Items = items
	return out, nil
}

// Products returns a page of products matching sel.
func (e *Engine) Products(sel Selection, page int) (*ProductPage, error) {
	if !sel.Has(Category) {
		return nil, ErrNoCategory
	}
	total, err := e.src.CountProducts(sel)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	page, pages := paging.Count(total, e.pageSize, page)
	out := &ProductPage{Total: total, Page: page, Pages: pages, Items: []models.Product{}}
	if total == 0 {
		return out, nil
	}
	items, err := e.src.ListProducts(sel, paging.Offset(e.pageSize, page), e.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	out.Items = items
	return out, nil
}

func newStep(kind StepKind, dim Dimension, sel Selection, total int64) Step {
	return Step{Kind: kind, Name: kind.String(), Dimension: dim, Selection: sel, Total: total}
}
