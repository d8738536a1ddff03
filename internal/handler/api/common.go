package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storebot/internal/models"
)

// Response helpers. Every reply is 200 with the status flag in the envelope.
func successResponse(c echo.Context, msg string, obj interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    msg,
		Obj:    obj,
	})
}

func errorResponse(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: false,
		Msg:    msg,
		Obj:    nil,
	})
}

func paginatedResponse(data interface{}, total int64, page, limit int) models.PaginatedResponse {
	return models.PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		limit = 50
	}
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	if pages == 0 {
		pages = 1
	}
	return pages
}

// bindAction decodes the body into req and records the action name for the
// request logger. Every endpoint routes on the "actions" field.
func bindAction(c echo.Context, req interface{}, action func() string) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	c.Set("api_actions", action())
	return nil
}
