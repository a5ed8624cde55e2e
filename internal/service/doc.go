// Package service contains the application use cases: account
// management, the topic tree operations, card CRUD, recursive study
// aggregation, and bulk import/export. Services orchestrate domain
// entities and store interfaces, owning transactional boundaries where
// an operation spans multiple writes, and never depend on a specific
// database implementation.
package service
