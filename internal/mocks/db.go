package mocks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// NewTxDB returns a *sql.DB whose connections and transactions are
// no-ops that always succeed. Services that wrap store calls in
// store.RunInTransaction can run against the in-memory stores with
// this handle: Begin, Commit, and Rollback do nothing, and the store
// mocks ignore the *sql.Tx passed to WithTx.
func NewTxDB() *sql.DB {
	return sql.OpenDB(noopConnector{})
}

type noopConnector struct{}

func (noopConnector) Connect(context.Context) (driver.Conn, error) { return noopConn{}, nil }
func (noopConnector) Driver() driver.Driver                        { return noopDriver{} }

type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("mocks: no-op connection does not execute queries")
}
func (noopConn) Close() error              { return nil }
func (noopConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

func (noopConn) BeginTx(context.Context, driver.TxOptions) (driver.Tx, error) {
	return noopTx{}, nil
}

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
