package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAuditAppend_RollsBackWithTransaction(t *testing.T) {
	f := newFixture(t)

	err := f.db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, f.audit.Append(tx, f.admin.ID, "will be rolled back"))
		return Conflict("abort")
	})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.EqualValues(t, 0, f.count(t, &models.AuditLog{}, ""))
}

func TestAuditAppend_LogsEntry(t *testing.T) {
	db := newTestDB(t)
	var buf bytes.Buffer
	audit := NewAuditService(db, zerolog.New(&buf))

	require.NoError(t, audit.Append(db, "user-1", "Created medication: aspirin"))

	var entry models.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Contains(t, buf.String(), `"actor_id":"user-1"`)
	assert.Contains(t, buf.String(), "Created medication: aspirin")
}

func TestAuditPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, msg := range []string{"Created appointment #1", "Deleted prescription #2", "Created medication: aspirin"} {
		require.NoError(t, f.audit.Append(f.db, f.admin.ID, msg))
	}

	res, err := f.audit.Page(ctx, actorOf(f.admin), AuditFilter{}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)

	res, err = f.audit.Page(ctx, actorOf(f.admin), AuditFilter{Search: "Created"}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)

	future := time.Now().Add(time.Hour)
	res, err = f.audit.Page(ctx, actorOf(f.admin), AuditFilter{From: &future}, pagination.New(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)

	res, err = f.audit.Page(ctx, actorOf(f.admin), AuditFilter{}, pagination.New(1, 2))
	require.NoError(t, err)
	assert.Len(t, res.List, 2)
	assert.EqualValues(t, 3, res.Total)

	for _, who := range []models.User{f.doctor, f.patient} {
		_, err := f.audit.Page(ctx, actorOf(who), AuditFilter{}, pagination.New(1, 10))
		assert.Equal(t, KindForbidden, KindOf(err))
	}
}

func TestAuditPage_NewestFirst(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		entry := models.AuditLog{UserID: f.admin.ID, Action: msg, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, f.db.Create(&entry).Error)
	}

	res, err := f.audit.Page(context.Background(), actorOf(f.admin), AuditFilter{}, pagination.New(1, 10))
	require.NoError(t, err)
	require.Len(t, res.List, 3)
	assert.Equal(t, "third", res.List[0].Action)
	assert.Equal(t, "second", res.List[1].Action)
	assert.Equal(t, "first", res.List[2].Action)
}
