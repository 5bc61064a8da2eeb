package handler

import (
	"context"
	"net/http"
	"strconv"

	"address-api/internal/models"
	"address-api/internal/service"

	"github.com/gin-gonic/gin"
)

// AddressHandler handles address requests
type AddressHandler struct {
	service AddressService
}

// AddressService interface for dependency injection
type AddressService interface {
	CreateAddress(context.Context, service.AddressInput) (*models.Address, error)
	GetAddress(context.Context, int64) (*models.Address, error)
	ListAddressesByPostalCodeState(context.Context, string) ([]models.Address, error)
	RefreshGeography(context.Context, int64) (*models.Address, error)
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(svc AddressService) *AddressHandler {
	return &AddressHandler{service: svc}
}

// Create handles POST /addresses requests
//
//	@Summary	Record an address with postal code geography
//	@Accept		json
//	@Produce	json
//	@Param		address	body		service.AddressInput	true	"Address as entered by the user"
//	@Success	201		{object}	models.AddressView
//	@Failure	400		{object}	map[string]string
//	@Failure	502		{object}	map[string]string
//	@Router		/addresses [post]
func (h *AddressHandler) Create(c *gin.Context) {
	var in service.AddressInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address: " + err.Error()})
		return
	}

	addr, err := h.service.CreateAddress(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, addr.View())
}

// Get handles GET /addresses/:id requests
//
//	@Summary	Get an address
//	@Produce	json
//	@Param		id	path		int	true	"Address ID"
//	@Success	200	{object}	models.AddressView
//	@Failure	404	{object}	map[string]string
//	@Router		/addresses/{id} [get]
func (h *AddressHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	addr, err := h.service.GetAddress(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, addr.View())
}

// List handles GET /addresses requests
//
//	@Summary	List addresses by effective postal code state
//	@Produce	json
//	@Param		postal_code_state	query	string	true	"State inferred from the postal code, or reported by the user"
//	@Success	200	{array}		models.AddressView
//	@Failure	400	{object}	map[string]string
//	@Router		/addresses [get]
func (h *AddressHandler) List(c *gin.Context) {
	state := c.Query("postal_code_state")
	if state == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter 'postal_code_state'"})
		return
	}

	addrs, err := h.service.ListAddressesByPostalCodeState(c.Request.Context(), state)
	if err != nil {
		writeError(c, err)
		return
	}

	views := make([]models.AddressView, 0, len(addrs))
	for i := range addrs {
		views = append(views, addrs[i].View())
	}

	c.JSON(http.StatusOK, views)
}

// Refresh handles POST /addresses/:id/refresh requests
//
//	@Summary	Repeat the postal code lookup of an address
//	@Produce	json
//	@Param		id	path		int	true	"Address ID"
//	@Success	200	{object}	models.AddressView
//	@Failure	404	{object}	map[string]string
//	@Failure	502	{object}	map[string]string
//	@Router		/addresses/{id}/refresh [post]
func (h *AddressHandler) Refresh(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	addr, err := h.service.RefreshGeography(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, addr.View())
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return 0, false
	}
	return id, true
}
