package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/openbooks/backend/internal/application/billing"
)

// TaxRateHandler handles tax rate API endpoints
type TaxRateHandler struct {
	BaseHandler
	taxRates *billingapp.TaxRateService
}

// NewTaxRateHandler creates a new TaxRateHandler
func NewTaxRateHandler(taxRates *billingapp.TaxRateService) *TaxRateHandler {
	return &TaxRateHandler{taxRates: taxRates}
}

// List returns all tax rates of the tenant, default rate first
func (h *TaxRateHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	h.Success(c, h.taxRates.List(c.Request.Context(), tenantID))
}

// GetDefault returns the tenant's default tax rate, if one is flagged
func (h *TaxRateHandler) GetDefault(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	rate := h.taxRates.DefaultRate(c.Request.Context(), tenantID)
	if rate == nil {
		h.NotFound(c, "No default tax rate configured")
		return
	}
	h.Success(c, rate)
}

// Create creates a new tax rate
func (h *TaxRateHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rate, err := h.taxRates.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, rate)
}

// Update updates a tax rate's name or default flag. The percentage is
// immutable once created; existing documents must keep their captured rates.
func (h *TaxRateHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	rateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax rate ID format")
		return
	}

	var req billingapp.UpdateTaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	rate, err := h.taxRates.Update(c.Request.Context(), tenantID, rateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, rate)
}

// Delete removes a tax rate
func (h *TaxRateHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	rateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax rate ID format")
		return
	}

	if err := h.taxRates.Delete(c.Request.Context(), tenantID, rateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
