package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"clinic-appointments-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := models.InitDB(models.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type fixture struct {
	db        *gorm.DB
	directory *UserDirectory
	audit     *AuditService
	appts     *AppointmentService
	records   *RecordService
	meds      *MedicationService
	notices   *AnnouncementService

	admin        models.User
	doctor       models.User
	otherDoctor  models.User
	patient      models.User
	otherPatient models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log := zerolog.Nop()

	f := &fixture{db: db}
	f.directory = NewUserDirectory(db)
	f.audit = NewAuditService(db, log)
	f.appts = NewAppointmentService(db, f.directory, f.audit, log)
	f.records = NewRecordService(db, f.audit, log)
	f.meds = NewMedicationService(db, f.audit, log)
	f.notices = NewAnnouncementService(db, f.audit, log)

	f.admin = createUser(t, db, models.RoleAdmin, "admin")
	f.doctor = createUser(t, db, models.RoleDoctor, "doctor")
	f.otherDoctor = createUser(t, db, models.RoleDoctor, "other-doctor")
	f.patient = createUser(t, db, models.RolePatient, "patient")
	f.otherPatient = createUser(t, db, models.RolePatient, "other-patient")
	return f
}

func createUser(t *testing.T, db *gorm.DB, role models.Role, name string) models.User {
	t.Helper()
	u := models.User{
		Email:     name + "@clinic.test",
		Password:  "x",
		FirstName: name,
		LastName:  "Tester",
		Role:      role,
	}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func actorOf(u models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func futureSlot(hours int) time.Time {
	return time.Now().UTC().Add(time.Duration(hours) * time.Hour).Truncate(time.Second)
}

func (f *fixture) book(t *testing.T, patient, doctor models.User, at time.Time) *models.Appointment {
	t.Helper()
	appt, err := f.appts.Create(context.Background(), actorOf(patient), CreateAppointmentInput{
		DoctorID:      doctor.ID,
		ScheduledTime: at,
		Description:   "headache for three days",
	})
	require.NoError(t, err)
	return appt
}

func (f *fixture) accept(t *testing.T, appt *models.Appointment) *models.Appointment {
	t.Helper()
	updated, err := f.appts.Transition(context.Background(), actorOf(f.doctor), appt.ID, TransitionInput{Status: models.StatusAccepted})
	require.NoError(t, err)
	return updated
}

func (f *fixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
