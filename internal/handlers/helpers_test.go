package handlers

import (
	"database/sql"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/smartvisit/visitor-backend/internal/database"
	"github.com/smartvisit/visitor-backend/internal/middleware"
	"github.com/smartvisit/visitor-backend/internal/services"
	"github.com/smartvisit/visitor-backend/pkg/facegate"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockDatabase adapts a sqlmock connection to the database.DB interface
type mockDatabase struct {
	db *sqlx.DB
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

// newVisitorHandler wires a handler over a sqlmock connection and a
// disabled face gateway
func newVisitorHandler(t *testing.T) (*VisitorHandler, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	visitorService := services.NewVisitorService(
		database.NewVisitorRepository(mockDB),
		services.NewNotificationService(database.NewNotificationRepository(mockDB)),
		facegate.NewDisabledGateway(logger),
		logger,
	)
	auditService := services.NewAuditService(mockDB)
	handler := NewVisitorHandler(visitorService, auditService, facegate.NewDisabledGateway(logger))

	return handler, mock, func() { db.Close() }
}

// testContext builds a gin context with a recorder and an authenticated
// user already in place
func testContext(t *testing.T, user middleware.UserContext) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Set(middleware.UserContextKey, user)
	return c, recorder
}
