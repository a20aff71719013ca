package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comsoc/events-api/internal/models"
	"github.com/comsoc/events-api/internal/service"
	appErrors "github.com/comsoc/events-api/pkg/errors"
	"github.com/comsoc/events-api/pkg/response"
)

// APIKeyHandler exposes API key management. Exec only.
type APIKeyHandler struct {
	keys *service.APIKeyService
}

// NewAPIKeyHandler constructs handler.
func NewAPIKeyHandler(keys *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{keys: keys}
}

type createAPIKeyRequest struct {
	Owner string `json:"owner"`
}

// createAPIKeyResponse carries the plaintext exactly once.
type createAPIKeyResponse struct {
	Key    string        `json:"key"`
	Record models.APIKey `json:"record"`
}

// Create godoc
// @Summary Mint a new API key
// @Tags Keys
// @Accept json
// @Produce json
// @Param payload body createAPIKeyRequest true "Key owner"
// @Success 201 {object} response.Envelope
// @Router /keys [post]
func (h *APIKeyHandler) Create(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plaintext, record, err := h.keys.Create(c.Request.Context(), req.Owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, createAPIKeyResponse{Key: plaintext, Record: *record})
}

// List godoc
// @Summary List API key records
// @Tags Keys
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /keys [get]
func (h *APIKeyHandler) List(c *gin.Context) {
	keys, err := h.keys.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, keys, nil)
}

// Get godoc
// @Summary Fetch one API key record
// @Tags Keys
// @Produce json
// @Param id path string true "Key id"
// @Success 200 {object} response.Envelope
// @Router /keys/{id} [get]
func (h *APIKeyHandler) Get(c *gin.Context) {
	key, err := h.keys.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, key, nil)
}

// Deactivate godoc
// @Summary Permanently deactivate an API key
// @Tags Keys
// @Param id path string true "Key id"
// @Success 204
// @Router /keys/{id} [delete]
func (h *APIKeyHandler) Deactivate(c *gin.Context) {
	if err := h.keys.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
