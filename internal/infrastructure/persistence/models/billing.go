package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// Document types discriminate rows in the shared line_items table
const (
	DocTypeEstimate = "ESTIMATE"
	DocTypeInvoice  = "INVOICE"
	DocTypeBill     = "BILL"
)

// TaxRateModel is the persistence model for TaxRate
type TaxRateModel struct {
	TenantModel
	Name        string          `gorm:"type:varchar(100);not null"`
	RatePercent decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	IsDefault   bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TaxRateModel) TableName() string {
	return "tax_rates"
}

// ToDomain converts the persistence model to a domain TaxRate
func (m *TaxRateModel) ToDomain() *billing.TaxRate {
	return &billing.TaxRate{
		TenantEntity: m.TenantModel.ToDomain(),
		Name:         m.Name,
		RatePercent:  m.RatePercent,
		IsDefault:    m.IsDefault,
	}
}

// TaxRateModelFromDomain creates a persistence model from a domain TaxRate
func TaxRateModelFromDomain(rate *billing.TaxRate) *TaxRateModel {
	m := &TaxRateModel{
		Name:        rate.Name,
		RatePercent: rate.RatePercent,
		IsDefault:   rate.IsDefault,
	}
	m.FromDomain(rate.TenantEntity)
	return m
}

// LineItemModel is the persistence model for line items of every document
// type. DocumentType discriminates the owning table.
type LineItemModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_line_items_document"`
	DocumentType     string          `gorm:"type:varchar(20);not null;index:idx_line_items_document"`
	ProductID        *uuid.UUID      `gorm:"type:uuid;index"`
	Description      string          `gorm:"type:varchar(500);not null;default:''"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EnteredUnitPrice decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRatePercent   decimal.Decimal `gorm:"type:decimal(9,4);not null"`
	NetUnitPrice     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmountPerUnit decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position         int             `gorm:"not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *LineItemModel) ToDomain() billing.LineItem {
	return billing.LineItem{
		ID:               m.ID,
		DocumentID:       m.DocumentID,
		ProductID:        m.ProductID,
		Description:      m.Description,
		Quantity:         m.Quantity,
		EnteredUnitPrice: m.EnteredUnitPrice,
		TaxRatePercent:   m.TaxRatePercent,
		NetUnitPrice:     m.NetUnitPrice,
		TaxAmountPerUnit: m.TaxAmountPerUnit,
		LineTotal:        m.LineTotal,
		Position:         m.Position,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// LineItemModelFromDomain creates a persistence model from a domain LineItem
func LineItemModelFromDomain(item *billing.LineItem, documentType string) LineItemModel {
	return LineItemModel{
		ID:               item.ID,
		DocumentID:       item.DocumentID,
		DocumentType:     documentType,
		ProductID:        item.ProductID,
		Description:      item.Description,
		Quantity:         item.Quantity,
		EnteredUnitPrice: item.EnteredUnitPrice,
		TaxRatePercent:   item.TaxRatePercent,
		NetUnitPrice:     item.NetUnitPrice,
		TaxAmountPerUnit: item.TaxAmountPerUnit,
		LineTotal:        item.LineTotal,
		Position:         item.Position,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}
}

// LineItemsToDomain converts a slice of line item models, preserving order
func LineItemsToDomain(items []LineItemModel) []billing.LineItem {
	result := make([]billing.LineItem, 0, len(items))
	for i := range items {
		result = append(result, items[i].ToDomain())
	}
	return result
}

// LineItemsFromDomain converts a slice of domain line items
func LineItemsFromDomain(items []billing.LineItem, documentType string) []LineItemModel {
	result := make([]LineItemModel, 0, len(items))
	for i := range items {
		result = append(result, LineItemModelFromDomain(&items[i], documentType))
	}
	return result
}

// EstimateModel is the persistence model for Estimate
type EstimateModel struct {
	TenantModel
	Number        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_estimates_tenant_number,priority:2"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	IssueDate     time.Time       `gorm:"not null;index"`
	ValidUntil    *time.Time      ``
	Status        string          `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	DiscountType  string          `gorm:"type:varchar(20);not null;default:'NONE'"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Notes         string          `gorm:"type:text"`
	ConvertedTo   *uuid.UUID      `gorm:"type:uuid"`
	Items         []LineItemModel `gorm:"-"`
}

// TableName returns the table name for GORM
func (EstimateModel) TableName() string {
	return "estimates"
}

// ToDomain converts the persistence model to a domain Estimate
func (m *EstimateModel) ToDomain() *billing.Estimate {
	return &billing.Estimate{
		TenantEntity:  m.TenantModel.ToDomain(),
		Number:        m.Number,
		CustomerID:    m.CustomerID,
		IssueDate:     m.IssueDate,
		ValidUntil:    m.ValidUntil,
		Status:        billing.DocumentStatus(m.Status),
		Items:         LineItemsToDomain(m.Items),
		DiscountType:  billing.DiscountType(m.DiscountType),
		DiscountValue: m.DiscountValue,
		ShippingCost:  m.ShippingCost,
		Totals: billing.DocumentTotals{
			Subtotal:       m.Subtotal,
			TaxAmount:      m.TaxAmount,
			DiscountAmount: m.Discount,
			ShippingCost:   m.ShippingCost,
			Total:          m.Total,
		},
		Notes:       m.Notes,
		ConvertedTo: m.ConvertedTo,
	}
}

// EstimateModelFromDomain creates a persistence model from a domain Estimate
func EstimateModelFromDomain(est *billing.Estimate) *EstimateModel {
	m := &EstimateModel{
		Number:        est.Number,
		CustomerID:    est.CustomerID,
		IssueDate:     est.IssueDate,
		ValidUntil:    est.ValidUntil,
		Status:        est.Status.String(),
		DiscountType:  string(est.DiscountType),
		DiscountValue: est.DiscountValue,
		ShippingCost:  est.ShippingCost,
		Subtotal:      est.Totals.Subtotal,
		TaxAmount:     est.Totals.TaxAmount,
		Discount:      est.Totals.DiscountAmount,
		Total:         est.Totals.Total,
		Notes:         est.Notes,
		ConvertedTo:   est.ConvertedTo,
		Items:         LineItemsFromDomain(est.Items, DocTypeEstimate),
	}
	m.FromDomain(est.TenantEntity)
	return m
}

// InvoiceModel is the persistence model for Invoice. Status is derived on
// read and never stored; only the cancelled and proforma flags persist.
type InvoiceModel struct {
	TenantModel
	Number        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	IssueDate     time.Time       `gorm:"not null;index"`
	Terms         string          `gorm:"type:varchar(20);not null;default:''"`
	DueDate       *time.Time      `gorm:"index"`
	Proforma      bool            `gorm:"not null;default:false"`
	DiscountType  string          `gorm:"type:varchar(20);not null;default:'NONE'"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Cancelled     bool            `gorm:"not null;default:false;index"`
	CancelReason  string          `gorm:"type:varchar(500)"`
	Notes         string          `gorm:"type:text"`
	Items         []LineItemModel `gorm:"-"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		TenantEntity:  m.TenantModel.ToDomain(),
		Number:        m.Number,
		CustomerID:    m.CustomerID,
		IssueDate:     m.IssueDate,
		Terms:         billing.PaymentTerms(m.Terms),
		DueDate:       m.DueDate,
		Proforma:      m.Proforma,
		Items:         LineItemsToDomain(m.Items),
		DiscountType:  billing.DiscountType(m.DiscountType),
		DiscountValue: m.DiscountValue,
		ShippingCost:  m.ShippingCost,
		Totals: billing.DocumentTotals{
			Subtotal:       m.Subtotal,
			TaxAmount:      m.TaxAmount,
			DiscountAmount: m.Discount,
			ShippingCost:   m.ShippingCost,
			Total:          m.Total,
		},
		PaidAmount:   m.PaidAmount,
		Cancelled:    m.Cancelled,
		CancelReason: m.CancelReason,
		Notes:        m.Notes,
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:        inv.Number,
		CustomerID:    inv.CustomerID,
		IssueDate:     inv.IssueDate,
		Terms:         inv.Terms.String(),
		DueDate:       inv.DueDate,
		Proforma:      inv.Proforma,
		DiscountType:  string(inv.DiscountType),
		DiscountValue: inv.DiscountValue,
		ShippingCost:  inv.ShippingCost,
		Subtotal:      inv.Totals.Subtotal,
		TaxAmount:     inv.Totals.TaxAmount,
		Discount:      inv.Totals.DiscountAmount,
		Total:         inv.Totals.Total,
		PaidAmount:    inv.PaidAmount,
		Cancelled:     inv.Cancelled,
		CancelReason:  inv.CancelReason,
		Notes:         inv.Notes,
		Items:         LineItemsFromDomain(inv.Items, DocTypeInvoice),
	}
	m.FromDomain(inv.TenantEntity)
	return m
}

// BillModel is the persistence model for Bill
type BillModel struct {
	TenantModel
	Number       string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_bills_tenant_number,priority:2"`
	VendorID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	BillDate     time.Time       `gorm:"not null;index"`
	Terms        string          `gorm:"type:varchar(20);not null;default:''"`
	DueDate      *time.Time      `gorm:"index"`
	Total        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaidAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Cancelled    bool            `gorm:"not null;default:false;index"`
	CancelReason string          `gorm:"type:varchar(500)"`
	Notes        string          `gorm:"type:text"`
	Items        []LineItemModel `gorm:"-"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		TenantEntity: m.TenantModel.ToDomain(),
		Number:       m.Number,
		VendorID:     m.VendorID,
		BillDate:     m.BillDate,
		Terms:        billing.PaymentTerms(m.Terms),
		DueDate:      m.DueDate,
		Items:        LineItemsToDomain(m.Items),
		Total:        m.Total,
		PaidAmount:   m.PaidAmount,
		Cancelled:    m.Cancelled,
		CancelReason: m.CancelReason,
		Notes:        m.Notes,
	}
}

// BillModelFromDomain creates a persistence model from a domain Bill
func BillModelFromDomain(bill *billing.Bill) *BillModel {
	m := &BillModel{
		Number:       bill.Number,
		VendorID:     bill.VendorID,
		BillDate:     bill.BillDate,
		Terms:        bill.Terms.String(),
		DueDate:      bill.DueDate,
		Total:        bill.Total,
		PaidAmount:   bill.PaidAmount,
		Cancelled:    bill.Cancelled,
		CancelReason: bill.CancelReason,
		Notes:        bill.Notes,
		Items:        LineItemsFromDomain(bill.Items, DocTypeBill),
	}
	m.FromDomain(bill.TenantEntity)
	return m
}
