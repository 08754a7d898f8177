// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, AggregateModel, BargainAggregateModel)
//   - trade.go: bargains, customers, vehicles, transactions
//   - commission.go: commission records, settings and overrides
//   - installment.go: installment schedules
//   - payment.go: payments against installments and subscriptions
//   - subscription.go: bargain subscriptions
//
// Money columns use decimal(18,2); rates use decimal(9,4). Calendar dates are
// stored in date columns and read back at midnight UTC.
package models
