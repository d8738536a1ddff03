package models

// APIResponse is the standard response envelope.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}

// PaginatedResponse wraps list results with pagination info.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// --- Catalog API payloads ---

// CatalogRequest covers every /api/catalog action. Selection keys are
// dimension names ("category", "brand", ...); value 0 selects "no value".
type CatalogRequest struct {
	Actions   string          `json:"actions"`
	Dimension string          `json:"dimension,omitempty"`
	Selection map[string]uint `json:"selection,omitempty"`
	Page      int             `json:"page,omitempty"`
	ID        uint            `json:"id,omitempty"`
	Active    *bool           `json:"active,omitempty"`
}

// --- Orders API payloads ---

type OrdersRequest struct {
	Actions    string `json:"actions"`
	Limit      int    `json:"limit,omitempty"`
	Page       int    `json:"page,omitempty"`
	StatusID   uint   `json:"status_id,omitempty"`
	CustomerID int64  `json:"customer_id,omitempty"`
	ID         uint   `json:"id,omitempty"`
	Query      string `json:"query,omitempty"`
}
