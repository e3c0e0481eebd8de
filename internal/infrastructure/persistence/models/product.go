package models

import (
	"github.com/posledger/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// ProductModel is the products table. Stock is only ever changed by
// conditional updates, never by saving a loaded model.
type ProductModel struct {
	TenantAggregateModel
	Code      string          `gorm:"type:varchar(50);not null"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Stock     int             `gorm:"not null"`
	MinStock  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive  bool            `gorm:"not null"`
}

func (ProductModel) TableName() string {
	return "products"
}

func (m *ProductModel) ToDomain() *inventory.Product {
	return &inventory.Product{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		Code:                m.Code,
		Name:                m.Name,
		Stock:               m.Stock,
		MinStock:            m.MinStock,
		UnitPrice:           m.UnitPrice,
		IsActive:            m.IsActive,
	}
}

func ProductModelFromDomain(p *inventory.Product) *ProductModel {
	m := &ProductModel{
		Code:      p.Code,
		Name:      p.Name,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		UnitPrice: p.UnitPrice,
		IsActive:  p.IsActive,
	}
	m.TenantAggregateModel.FromDomain(p.TenantAggregateRoot)
	return m
}
