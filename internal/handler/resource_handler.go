package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/service"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/response"
)

const defaultLimit = 10

// ResourceHandler exposes list/create/update/delete for one resource.
type ResourceHandler[T any, P interface {
	*T
	models.Entity
}] struct {
	service *service.ResourceService[T, P]
}

// NewResourceHandler constructs a resource handler.
func NewResourceHandler[T any, P interface {
	*T
	models.Entity
}](svc *service.ResourceService[T, P]) *ResourceHandler[T, P] {
	return &ResourceHandler[T, P]{service: svc}
}

// Register mounts the routes under group, e.g. /v1/class.
func (h *ResourceHandler[T, P]) Register(group *gin.RouterGroup) {
	name := h.service.Resource().Name
	group.GET("/"+name, h.List)
	group.GET("/"+name+"/:id", h.Get)
	group.POST("/"+name, h.Create)
	group.PUT("/"+name+"/:id", h.Update)
	group.DELETE("/"+name+"/:id", h.Delete)
}

// List godoc
// @Summary List records
// @Produce json
// @Param page query int false "Page, 1 based"
// @Param limit query int false "Page size"
// @Param search query string false "Search keyword"
// @Success 200 {object} response.ListDoc
// @Router /v1/{resource} [get]
func (h *ResourceHandler[T, P]) List(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	if h.service.Resource().BareList {
		items, err := h.service.ListAll(c.Request.Context(), search)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Bare(c, items)
		return
	}

	params, err := queryParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	params.Search = search
	page, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, page.Items, page.Total, params)
}

// Get godoc
// @Summary Get one record
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /v1/{resource}/{id} [get]
func (h *ResourceHandler[T, P]) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Create godoc
// @Summary Create record
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /v1/{resource} [post]
func (h *ResourceHandler[T, P]) Create(c *gin.Context) {
	payload, ok := bindRecord[T, P](c)
	if !ok {
		return
	}
	record, err := h.service.Create(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Update record
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Success 200 {object} response.Envelope
// @Router /v1/{resource}/{id} [put]
func (h *ResourceHandler[T, P]) Update(c *gin.Context) {
	payload, ok := bindRecord[T, P](c)
	if !ok {
		return
	}
	record, err := h.service.Update(c.Request.Context(), c.Param("id"), payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Delete godoc
// @Summary Delete record
// @Param id path string true "Record ID"
// @Success 204
// @Router /v1/{resource}/{id} [delete]
func (h *ResourceHandler[T, P]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func bindRecord[T any, P interface {
	*T
	models.Entity
}](c *gin.Context) (P, bool) {
	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		response.Error(c, appErrors.WithDetails(
			appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"),
			[]string{"invalid payload: " + err.Error()},
		))
		return nil, false
	}
	return P(&record), true
}

func queryParams(c *gin.Context) (models.QueryParams, error) {
	params := models.QueryParams{Page: 1, Limit: defaultLimit}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
		}
		params.Page = page
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 100 {
			return params, appErrors.Clone(appErrors.ErrValidation, "limit must be between 1 and 100")
		}
		params.Limit = limit
	}
	return params, nil
}
