package models

import (
	"github.com/posledger/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// CustomerModel is the customers table. current_debt is the maintained
// aggregate of the customer's outstanding CREDIT sales.
type CustomerModel struct {
	TenantAggregateModel
	Name        string          `gorm:"type:varchar(200);not null"`
	CreditLimit decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentDebt decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsActive    bool            `gorm:"not null"`
}

func (CustomerModel) TableName() string {
	return "customers"
}

func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		TenantAggregateRoot: m.TenantAggregateModel.ToDomain(),
		Name:                m.Name,
		CreditLimit:         m.CreditLimit,
		CurrentDebt:         m.CurrentDebt,
		IsActive:            m.IsActive,
	}
}

func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:        c.Name,
		CreditLimit: c.CreditLimit,
		CurrentDebt: c.CurrentDebt,
		IsActive:    c.IsActive,
	}
	m.TenantAggregateModel.FromDomain(c.TenantAggregateRoot)
	return m
}
