package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-dashboard/internal/models"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
)

// Envelope wraps a single record.
type Envelope struct {
	Data interface{} `json:"data"`
}

// ErrorBody is the error contract. Message is a string, or a list of field
// messages for validation failures.
type ErrorBody struct {
	Message interface{} `json:"message"`
	Code    string      `json:"code"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a single record wrapped in {data}.
func JSON(c *gin.Context, status int, data interface{}) {
	noStore(c)
	c.JSON(status, Envelope{Data: data})
}

// List sends one page as {data, total, page, limit, totalPages}. Page and
// limit are echoed as strings.
func List[T any](c *gin.Context, items []T, total int, params models.QueryParams) {
	noStore(c)
	c.JSON(http.StatusOK, Page(items, total, params))
}

// Page builds the list envelope without writing it.
func Page[T any](items []T, total int, params models.QueryParams) models.ListEnvelope[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if params.Limit > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return models.ListEnvelope[T]{
		Data:       items,
		Total:      total,
		Page:       strconv.Itoa(params.Page),
		Limit:      strconv.Itoa(params.Limit),
		TotalPages: totalPages,
	}
}

// Bare sends an unwrapped array.
func Bare(c *gin.Context, items interface{}) {
	noStore(c)
	c.JSON(http.StatusOK, items)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	body := ErrorBody{Message: appErr.Message, Code: appErr.Code}
	if len(appErr.Details) > 0 {
		body.Message = appErr.Details
	}
	noStore(c)
	c.AbortWithStatusJSON(appErr.Status, body)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ListDoc documents the list envelope for the API docs.
type ListDoc struct {
	Data       []interface{} `json:"data"`
	Total      int           `json:"total"`
	Page       string        `json:"page" example:"1"`
	Limit      string        `json:"limit" example:"10"`
	TotalPages int           `json:"totalPages"`
}
