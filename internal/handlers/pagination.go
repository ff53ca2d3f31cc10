package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"chat-api/internal/apperrors"
	"chat-api/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// pageResponse is the list envelope.
type pageResponse[T any] struct {
	Count   int `json:"count"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Results []T `json:"results"`
}

func newPageResponse[T any](items []T, total int, page models.Page) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{Count: total, Limit: page.Limit, Offset: page.Offset, Results: items}
}

// parsePage reads limit and offset. Limits above the maximum are clamped.
func parsePage(c *gin.Context) (models.Page, error) {
	page := models.Page{Limit: defaultLimit}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return models.Page{}, apperrors.InvalidField("limit", "A positive integer is required.")
		}
		if limit > maxLimit {
			limit = maxLimit
		}
		page.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return models.Page{}, apperrors.InvalidField("offset", "A non-negative integer is required.")
		}
		page.Offset = offset
	}
	return page, nil
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
