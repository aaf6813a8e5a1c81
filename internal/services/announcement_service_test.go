package services

import (
	"context"
	"testing"
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) publish(t *testing.T, title string, typ models.AnnouncementType, pinned bool, expires time.Time) *models.Announcement {
	t.Helper()
	a, err := f.notices.Create(context.Background(), actorOf(f.admin), AnnouncementInput{
		Title:       &title,
		Description: strPtr("The clinic will be closed for maintenance on Sunday morning."),
		Type:        &typ,
		IsTop:       &pinned,
		ExpireDate:  &expires,
	})
	require.NoError(t, err)
	return a
}

func TestAnnouncementCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.publish(t, "Holiday hours", models.AnnouncementNotice, true, time.Now().Add(48*time.Hour))
	assert.NotEmpty(t, a.ID)
	assert.True(t, a.IsTop)

	var entry models.AuditLog
	require.NoError(t, f.db.First(&entry, "action LIKE ?", "Created notice #%").Error)
	assert.Equal(t, f.admin.ID, entry.UserID)
	assert.Equal(t, "Created notice #"+a.ID+" | title: Holiday hours [pinned]", entry.Action)

	typ := models.AnnouncementPolicy
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	bad := models.AnnouncementType("memo")
	for name, in := range map[string]AnnouncementInput{
		"missing title":   {Description: strPtr("d"), Type: &typ, ExpireDate: &future},
		"blank title":     {Title: strPtr("  "), Description: strPtr("d"), Type: &typ, ExpireDate: &future},
		"missing content": {Title: strPtr("t"), Type: &typ, ExpireDate: &future},
		"missing type":    {Title: strPtr("t"), Description: strPtr("d"), ExpireDate: &future},
		"unknown type":    {Title: strPtr("t"), Description: strPtr("d"), Type: &bad, ExpireDate: &future},
		"missing expiry":  {Title: strPtr("t"), Description: strPtr("d"), Type: &typ},
		"already expired": {Title: strPtr("t"), Description: strPtr("d"), Type: &typ, ExpireDate: &past},
	} {
		_, err := f.notices.Create(ctx, actorOf(f.admin), in)
		assert.Equal(t, KindInvalidInput, KindOf(err), name)
	}

	_, err := f.notices.Create(ctx, actorOf(f.doctor), AnnouncementInput{Title: strPtr("t"), Description: strPtr("d"), Type: &typ, ExpireDate: &future})
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.EqualValues(t, 1, f.count(t, &models.Announcement{}, ""))
}

func TestAnnouncementUpdate_AuditsChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.publish(t, "Holiday hours", models.AnnouncementNotice, true, time.Now().Add(48*time.Hour))

	policy := models.AnnouncementPolicy
	unpinned := false
	updated, err := f.notices.Update(ctx, actorOf(f.admin), a.ID, AnnouncementInput{
		Title:       strPtr("Visiting policy"),
		Description: strPtr("Visitors must register at the front desk before entering wards."),
		Type:        &policy,
		IsTop:       &unpinned,
	})
	require.NoError(t, err)
	assert.Equal(t, "Visiting policy", updated.Title)
	assert.False(t, updated.IsTop)

	var entry models.AuditLog
	require.NoError(t, f.db.First(&entry, "action LIKE ?", "Updated policy #%").Error)
	assert.Contains(t, entry.Action, `title "Holiday hours" -> "Visiting policy"`)
	assert.Contains(t, entry.Action, `type "notice" -> "policy"`)
	assert.Contains(t, entry.Action, `content "The clinic will be c..." -> "Visitors must regist..."`)
	assert.Contains(t, entry.Action, "unpinned")
	assert.NotContains(t, entry.Action, "expires")

	// identical values write nothing
	_, err = f.notices.Update(ctx, actorOf(f.admin), a.ID, AnnouncementInput{Title: strPtr("Visiting policy")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.count(t, &models.AuditLog{}, "action LIKE ?", "Updated %"))

	_, err = f.notices.Update(ctx, actorOf(f.admin), a.ID, AnnouncementInput{Title: strPtr("")})
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = f.notices.Update(ctx, actorOf(f.admin), "missing", AnnouncementInput{Title: strPtr("x")})
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = f.notices.Update(ctx, actorOf(f.doctor), a.ID, AnnouncementInput{Title: strPtr("x")})
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestAnnouncementDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.publish(t, "Flu shots", models.AnnouncementGeneral, false, time.Now().Add(time.Hour))

	assert.Equal(t, KindForbidden, KindOf(f.notices.Delete(ctx, actorOf(f.patient), a.ID)))
	require.NoError(t, f.notices.Delete(ctx, actorOf(f.admin), a.ID))
	assert.EqualValues(t, 0, f.count(t, &models.Announcement{}, ""))
	assert.EqualValues(t, 1, f.count(t, &models.AuditLog{}, "action = ?", "Deleted announcement #"+a.ID+" | title: Flu shots"))

	assert.Equal(t, KindNotFound, KindOf(f.notices.Delete(ctx, actorOf(f.admin), a.ID)))
}

func TestAnnouncementList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	page := pagination.New(1, 10)
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

	older := f.publish(t, "Parking changes", models.AnnouncementNotice, false, time.Now().Add(24*time.Hour))
	pinned := f.publish(t, "Opening hours", models.AnnouncementPolicy, true, time.Now().Add(24*time.Hour))
	newer := f.publish(t, "New lab wing", models.AnnouncementGeneral, false, time.Now().Add(24*time.Hour))
	for i, a := range []*models.Announcement{older, pinned, newer} {
		require.NoError(t, f.db.Model(&models.Announcement{}).Where("id = ?", a.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}
	expired := models.Announcement{
		Title:       "Old notice",
		Description: "gone",
		Type:        models.AnnouncementNotice,
		ExpireDate:  time.Now().Add(-time.Hour).UTC(),
	}
	require.NoError(t, f.db.Create(&expired).Error)

	for _, who := range []models.User{f.admin, f.doctor, f.patient} {
		res, err := f.notices.List(ctx, actorOf(who), AnnouncementFilter{}, page)
		require.NoError(t, err)
		require.Len(t, res.List, 3, "as %s", who.Role)
		assert.Equal(t, pinned.ID, res.List[0].ID)
		assert.Equal(t, newer.ID, res.List[1].ID)
		assert.Equal(t, older.ID, res.List[2].ID)
	}

	res, err := f.notices.List(ctx, actorOf(f.admin), AnnouncementFilter{Scope: ScopeAll}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 4, res.Total)

	_, err = f.notices.List(ctx, actorOf(f.patient), AnnouncementFilter{Scope: ScopeAll}, page)
	assert.Equal(t, KindForbidden, KindOf(err))

	res, err = f.notices.List(ctx, actorOf(f.patient), AnnouncementFilter{Type: models.AnnouncementNotice}, page)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, older.ID, res.List[0].ID)

	res, err = f.notices.List(ctx, actorOf(f.patient), AnnouncementFilter{Search: "lab"}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	top := true
	res, err = f.notices.List(ctx, actorOf(f.patient), AnnouncementFilter{IsTop: &top}, page)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)

	from, to := base.Add(30*time.Minute), base.Add(90*time.Minute)
	res, err = f.notices.List(ctx, actorOf(f.patient), AnnouncementFilter{From: &from, To: &to}, page)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Total)
	assert.Equal(t, pinned.ID, res.List[0].ID)

	_, err = f.notices.List(ctx, actorOf(f.patient), AnnouncementFilter{Scope: "expired"}, page)
	assert.Equal(t, KindInvalidInput, KindOf(err))

	_, err = f.notices.List(ctx, Actor{ID: "x", Role: "nurse"}, AnnouncementFilter{}, page)
	assert.Equal(t, KindForbidden, KindOf(err))
}
