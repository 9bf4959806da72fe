// Package models contains the GORM persistence models and their mappers.
// Domain entities carry no ORM tags; repositories convert through
// ToDomain / ...ModelFromDomain at the boundary.
//
//   - base.go: shared id, timestamp and version columns
//   - trade.go: orders and order_items
//   - identity.go: users and login_attempts
//   - printing.go: print_jobs
package models
