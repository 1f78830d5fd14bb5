package services

import (
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

// mockDatabase adapts a sqlmock connection to the database.DB interface
type mockDatabase struct {
	db *sqlx.DB
}

func newMockDatabase(db *sql.DB) *mockDatabase {
	return &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return m.db.Get(dest, query, args...)
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return m.db.Select(dest, query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

// stubGateway records enrollment calls and fails on demand
type stubGateway struct {
	enrollErr     error
	enrolledIDs   []string
	enrolledNames []string
}

func (g *stubGateway) EnrollFace(visitorID, name, photo string) error {
	g.enrolledIDs = append(g.enrolledIDs, visitorID)
	g.enrolledNames = append(g.enrolledNames, name)
	return g.enrollErr
}

func (g *stubGateway) FetchAlerts(limit int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (g *stubGateway) FetchGeofenceAlerts(limit int) (json.RawMessage, error) {
	return json.RawMessage(`[]`), nil
}

func (g *stubGateway) GetName() string {
	return "stub"
}
