// Package models holds the GORM persistence models of the ledger tables.
// Domain entities carry no ORM tags; every model here has ToDomain/FromDomain
// mappers and repositories only ever hand domain types to callers.
//
// Tables: products, customers, sales, sale_items, customer_payments,
// folio_sequences, outbox_events. The SQL in /migrations is the schema of
// record; AutoMigrate on these models is used only by tests.
package models
