// Package mocks provides test doubles for service and API tests: an
// in-memory store backed by a shared Data set, a no-op *sql.DB whose
// transactions always succeed, and a function-field JWT service mock.
package mocks
