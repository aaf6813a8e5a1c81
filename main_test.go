package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic-appointments-server/internal/config"
	"clinic-appointments-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.InitDB(models.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	return db
}

func TestCommandsRegistered(t *testing.T) {
	for _, cmd := range []string{"serve", "migrate", "user"} {
		var found bool
		for _, c := range []interface{ Name() string }{serveCmd(), migrateCmd(), userCmd()} {
			if c.Name() == cmd {
				found = true
			}
		}
		assert.True(t, found, cmd)
	}

	create, _, err := userCmd().Find([]string{"create"})
	require.NoError(t, err)
	assert.NotNil(t, create.Flags().Lookup("email"))
	assert.NotNil(t, create.Flags().Lookup("role"))
}

func TestCreateUser(t *testing.T) {
	db := testDB(t)

	u, err := createUser(db, " Doc@Clinic.test ", "longenough", models.RoleDoctor, "Gregory", "House", "")
	require.NoError(t, err)
	assert.Equal(t, "doc@clinic.test", u.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("longenough")))

	_, err = createUser(db, "x@clinic.test", "short", models.RolePatient, "", "", "")
	assert.Error(t, err)

	_, err = createUser(db, "y@clinic.test", "longenough", "nurse", "", "", "")
	assert.Error(t, err)

	_, err = createUser(db, "doc@clinic.test", "longenough", models.RoleDoctor, "", "", "")
	assert.Error(t, err)
}

func TestWithDB_ClosesPool(t *testing.T) {
	db := testDB(t)

	err := withDB(db, func(db *gorm.DB) error {
		return models.Migrate(db)
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "pool must be closed once the command finishes")

	wantErr := errors.New("boom")
	assert.ErrorIs(t, withDB(testDB(t), func(*gorm.DB) error { return wantErr }), wantErr)
}

func TestNewRouter_Health(t *testing.T) {
	cfg := &config.Config{Environment: "development", JWTSecret: "s", Origins: []string{"http://localhost:4200"}}
	router := newRouter(cfg, testDB(t), zerolog.Nop())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"UP"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
