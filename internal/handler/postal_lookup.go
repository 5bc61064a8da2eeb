package handler

import (
	"context"
	"errors"
	"net/http"

	"address-api/internal/lookup"
	"address-api/internal/models"
	"address-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PostalLookupHandler handles postal code lookup requests
type PostalLookupHandler struct {
	service PostalLookupService
}

// Service interface for dependency injection
type PostalLookupService interface {
	Lookup(context.Context, string, string) (models.LookupResult, error)
}

// NewPostalLookupHandler creates a new postal lookup handler
func NewPostalLookupHandler(svc PostalLookupService) *PostalLookupHandler {
	return &PostalLookupHandler{service: svc}
}

// Lookup handles GET /postal-lookup requests
//
//	@Summary	Infer city and state from a postal code
//	@Produce	json
//	@Param		country		query		string	true	"Two-letter country code"
//	@Param		postal_code	query		string	true	"Postal code"
//	@Success	200			{object}	models.LookupResult
//	@Failure	400			{object}	map[string]string
//	@Failure	502			{object}	map[string]string
//	@Router		/postal-lookup [get]
func (h *PostalLookupHandler) Lookup(c *gin.Context) {
	country := c.Query("country")
	postalCode := c.Query("postal_code")

	if country == "" || postalCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'country' and 'postal_code'"})
		return
	}

	result, err := h.service.Lookup(c.Request.Context(), country, postalCode)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// writeError maps service errors to status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCountry):
		c.JSON(http.StatusBadRequest, gin.H{"error": "country must be a two-letter code"})
	case errors.Is(err, service.ErrAddressNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
	case errors.Is(err, lookup.ErrLookupFailed):
		log.Error().Err(err).Msg("postal code lookup failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "postal code lookup failed"})
	default:
		log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
