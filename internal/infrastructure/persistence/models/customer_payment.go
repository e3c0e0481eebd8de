package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/finance"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CustomerPaymentModel is the append-only customer_payments table
type CustomerPaymentModel struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_customer_payments_customer,priority:1"`
	CustomerID    uuid.UUID           `gorm:"type:uuid;not null;index:idx_customer_payments_customer,priority:2"`
	SaleID        *uuid.UUID          `gorm:"type:uuid;index"`
	Amount        decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaymentMethod trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaymentDate   time.Time           `gorm:"not null"`
	Reference     string              `gorm:"type:varchar(100)"`
	Notes         string              `gorm:"type:text"`
	CreatedBy     *uuid.UUID          `gorm:"type:uuid"`
	CreatedAt     time.Time           `gorm:"not null"`
}

func (CustomerPaymentModel) TableName() string {
	return "customer_payments"
}

func (m *CustomerPaymentModel) ToDomain() *finance.CustomerPayment {
	return &finance.CustomerPayment{
		ID:            m.ID,
		TenantID:      m.TenantID,
		CustomerID:    m.CustomerID,
		SaleID:        m.SaleID,
		Amount:        m.Amount,
		PaymentMethod: m.PaymentMethod,
		PaymentDate:   m.PaymentDate,
		Reference:     m.Reference,
		Notes:         m.Notes,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

func CustomerPaymentModelFromDomain(p *finance.CustomerPayment) *CustomerPaymentModel {
	return &CustomerPaymentModel{
		ID:            p.ID,
		TenantID:      p.TenantID,
		CustomerID:    p.CustomerID,
		SaleID:        p.SaleID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		PaymentDate:   p.PaymentDate,
		Reference:     p.Reference,
		Notes:         p.Notes,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}
