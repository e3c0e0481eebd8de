package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/posledger/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// SaleModel is the sales table
type SaleModel struct {
	TenantAggregateModel
	CustomerID       *uuid.UUID          `gorm:"type:uuid;index"`
	Folio            string              `gorm:"type:varchar(40);not null"`
	PaymentMethod    trade.PaymentMethod `gorm:"type:varchar(20);not null"`
	Subtotal         decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Tax              decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Total            decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	AmountPaid       decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	RemainingBalance decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	PaymentStatus    trade.PaymentStatus `gorm:"type:varchar(20);not null;index"`
	DueDate          *time.Time
	Notes            string          `gorm:"type:text"`
	Items            []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

func (SaleModel) TableName() string {
	return "sales"
}

// SaleItemModel is the sale_items table
type SaleItemModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

func (SaleItemModel) TableName() string {
	return "sale_items"
}

func (m *SaleModel) ToDomain() *trade.Sale {
	s := &trade.Sale{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		CustomerID:          m.CustomerID,
		Folio:               m.Folio,
		PaymentMethod:       m.PaymentMethod,
		Subtotal:            m.Subtotal,
		Tax:                 m.Tax,
		Total:               m.Total,
		AmountPaid:          m.AmountPaid,
		RemainingBalance:    m.RemainingBalance,
		PaymentStatus:       m.PaymentStatus,
		DueDate:             m.DueDate,
		Notes:               m.Notes,
		Items:               make([]trade.SaleItem, 0, len(m.Items)),
	}
	for _, it := range m.Items {
		s.Items = append(s.Items, trade.SaleItem{
			ID:        it.ID,
			SaleID:    it.SaleID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return s
}

func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{
		CustomerID:       s.CustomerID,
		Folio:            s.Folio,
		PaymentMethod:    s.PaymentMethod,
		Subtotal:         s.Subtotal,
		Tax:              s.Tax,
		Total:            s.Total,
		AmountPaid:       s.AmountPaid,
		RemainingBalance: s.RemainingBalance,
		PaymentStatus:    s.PaymentStatus,
		DueDate:          s.DueDate,
		Notes:            s.Notes,
		Items:            make([]SaleItemModel, 0, len(s.Items)),
	}
	m.TenantAggregateModel.FromDomain(s.TenantAggregateRoot)
	for _, it := range s.Items {
		m.Items = append(m.Items, SaleItemModel{
			ID:        it.ID,
			TenantID:  s.TenantID,
			SaleID:    s.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal,
		})
	}
	return m
}
