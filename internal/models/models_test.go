package models

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestInitDB_SQLiteMigratesAllTables(t *testing.T) {
	db, err := InitDB(DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)

	for _, m := range AllModels() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestOpenDB_UnknownDriver(t *testing.T) {
	_, err := OpenDB(DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestBaseModel_BeforeCreateAssignsUUID(t *testing.T) {
	b := &BaseModel{}
	require.NoError(t, b.BeforeCreate(nil))
	_, err := uuid.Parse(b.ID)
	assert.NoError(t, err)

	b = &BaseModel{ID: "fixed"}
	require.NoError(t, b.BeforeCreate(nil))
	assert.Equal(t, "fixed", b.ID)
}

func TestUser_Password(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("correct horse"))
	assert.NotEqual(t, "correct horse", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("correct horse")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("battery staple")))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).DisplayName())
	assert.Equal(t, "ada@example.com", (&User{Email: "ada@example.com"}).DisplayName())
}

func TestAppointmentStatus_Label(t *testing.T) {
	assert.Equal(t, "Accepted", StatusAccepted.Label())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, AppointmentStatus("confirmed").Valid())
	assert.Equal(t, "confirmed", AppointmentStatus("confirmed").Label())
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleDoctor.Valid())
	assert.False(t, Role("nurse").Valid())
}

func TestAnnouncementType_Valid(t *testing.T) {
	assert.True(t, AnnouncementPolicy.Valid())
	assert.False(t, AnnouncementType("memo").Valid())
}
