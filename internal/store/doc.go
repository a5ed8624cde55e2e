// Package store defines the persistence interfaces for users, topics,
// and cards, plus the transaction helpers the service layer uses to
// scope multi-write operations. Implementations live under
// internal/platform.
package store
