package catalog

import "fmt"

// Dimension is one browsable product attribute.
type Dimension string

const (
	Category    Dimension = "category"
	Brand       Dimension = "brand"
	DeviceBrand Dimension = "device_brand"
	DeviceModel Dimension = "device_model"
	Series      Dimension = "series"
	Color       Dimension = "color"
)

// Dimensions lists every dimension in browsing order.
var Dimensions = []Dimension{Category, Brand, DeviceBrand, DeviceModel, Series, Color}

var prompts = map[Dimension]string{
	Category:    "Выберите категорию",
	Brand:       "Выберите производителя",
	DeviceBrand: "Выберите марку устройства",
	DeviceModel: "Выберите устройство",
	Series:      "Выберите серию",
	Color:       "Выберите цвет",
}

var noValueLabels = map[Dimension]string{
	Category:    "Без категории",
	Brand:       "Без производителя",
	DeviceBrand: "Универсальные",
	DeviceModel: "Универсальные",
	Series:      "Без серии",
	Color:       "Без цвета",
}

// ParseDimension validates a dimension name coming from a callback or request.
func ParseDimension(s string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", s)
}

// Index returns the position of d in browsing order, or -1.
func (d Dimension) Index() int {
	for i, v := range Dimensions {
		if v == d {
			return i
		}
	}
	return -1
}

// Prompt is the question shown above the option list.
func (d Dimension) Prompt() string {
	if p, ok := prompts[d]; ok {
		return p
	}
	return "Выберите"
}

// NoValueLabel names the option for products with the dimension unset.
func (d Dimension) NoValueLabel() string {
	if l, ok := noValueLabels[d]; ok {
		return l
	}
	return "Другое"
}

// Selection maps chosen dimensions to ids. An id of 0 selects products where
// the dimension is unset.
type Selection map[Dimension]uint

// Clone returns an independent copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Has reports whether d was chosen (including the "no value" choice).
func (s Selection) Has(d Dimension) bool {
	_, ok := s[d]
	return ok
}

// With returns a copy of s with d set to id.
func (s Selection) With(d Dimension, id uint) Selection {
	out := s.Clone()
	out[d] = id
	return out
}

// Truncate returns a copy holding only dimensions before d.
func (s Selection) Truncate(d Dimension) Selection {
	idx := d.Index()
	out := make(Selection, len(s))
	for k, v := range s {
		if k.Index() < idx {
			out[k] = v
		}
	}
	return out
}

// FromStrings converts a request map keyed by dimension names.
func FromStrings(m map[string]uint) (Selection, error) {
	sel := make(Selection, len(m))
	for k, v := range m {
		d, err := ParseDimension(k)
		if err != nil {
			return nil, err
		}
		sel[d] = v
	}
	return sel, nil
}
