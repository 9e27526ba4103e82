package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/openbooks/backend/internal/application/billing"
)

// EstimateHandler handles estimate API endpoints
type EstimateHandler struct {
	BaseHandler
	estimates *billingapp.EstimateService
}

// NewEstimateHandler creates a new EstimateHandler
func NewEstimateHandler(estimates *billingapp.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimates: estimates}
}

// Create creates a new estimate
func (h *EstimateHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req billingapp.CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	estimate, err := h.estimates.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, estimate)
}

// GetByID returns a single estimate
func (h *EstimateHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	estimate, err := h.estimates.Get(c.Request.Context(), tenantID, estimateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// List returns a paginated list of estimates
func (h *EstimateHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var query billingapp.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindingError(c, err)
		return
	}

	page, err := h.estimates.List(c.Request.Context(), tenantID, query)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update updates estimate header fields
func (h *EstimateHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req billingapp.UpdateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	estimate, err := h.estimates.Update(c.Request.Context(), tenantID, estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// AddItem appends a line item to an estimate
func (h *EstimateHandler) AddItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req billingapp.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	estimate, err := h.estimates.AddItem(c.Request.Context(), tenantID, estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// UpdateItem updates a line item on an estimate
func (h *EstimateHandler) UpdateItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	var req billingapp.LineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	estimate, err := h.estimates.UpdateItem(c.Request.Context(), tenantID, estimateID, itemID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// RemoveItem removes a line item from an estimate
func (h *EstimateHandler) RemoveItem(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid line item ID format")
		return
	}

	estimate, err := h.estimates.RemoveItem(c.Request.Context(), tenantID, estimateID, itemID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// SetDiscount sets a document-level discount on an estimate
func (h *EstimateHandler) SetDiscount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req billingapp.DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	estimate, err := h.estimates.SetDiscount(c.Request.Context(), tenantID, estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// SetShipping sets the shipping cost on an estimate
func (h *EstimateHandler) SetShipping(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req billingapp.ShippingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	estimate, err := h.estimates.SetShipping(c.Request.Context(), tenantID, estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// MarkSent marks a draft estimate as sent to the customer
func (h *EstimateHandler) MarkSent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	estimate, err := h.estimates.MarkSent(c.Request.Context(), tenantID, estimateID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, estimate)
}

// Convert converts an estimate into a new invoice
func (h *EstimateHandler) Convert(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	var req billingapp.ConvertEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.estimates.Convert(c.Request.Context(), tenantID, estimateID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, invoice)
}

// Delete removes an estimate
func (h *EstimateHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	estimateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid estimate ID format")
		return
	}

	if err := h.estimates.Delete(c.Request.Context(), tenantID, estimateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
