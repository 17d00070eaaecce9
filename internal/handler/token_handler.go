package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-dashboard/internal/models"
	"github.com/noah-isme/sma-dashboard/internal/service"
	appErrors "github.com/noah-isme/sma-dashboard/pkg/errors"
	"github.com/noah-isme/sma-dashboard/pkg/response"
)

// TokenHandler issues development tokens. It is only mounted outside
// production.
type TokenHandler struct {
	tokens *service.TokenService
}

// NewTokenHandler constructs a token handler.
func NewTokenHandler(tokens *service.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Issue godoc
// @Summary Issue a development bearer token
// @Accept json
// @Produce json
// @Success 201 {object} response.Envelope
// @Router /dev/token [post]
func (h *TokenHandler) Issue(c *gin.Context) {
	var req models.IssueTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	token, expires, err := h.tokens.Issue(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, models.IssuedToken{Token: token, ExpiresAt: expires.Format(time.RFC3339)})
}
