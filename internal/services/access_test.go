package services

import (
	"testing"

	"clinic-appointments-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {
	appt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}

	admin := Actor{ID: "a1", Role: models.RoleAdmin}
	doctor := Actor{ID: "d1", Role: models.RoleDoctor}
	otherDoctor := Actor{ID: "d2", Role: models.RoleDoctor}
	patient := Actor{ID: "p1", Role: models.RolePatient}
	otherPatient := Actor{ID: "p2", Role: models.RolePatient}

	tests := []struct {
		name   string
		actor  Actor
		action Action
		want   bool
	}{
		{"admin view", admin, ActionView, true},
		{"admin transition", admin, ActionTransition, true},
		{"admin edit", admin, ActionEditRecord, true},
		{"admin cancel", admin, ActionCancel, true},
		{"doctor view", doctor, ActionView, true},
		{"doctor transition", doctor, ActionTransition, true},
		{"doctor edit", doctor, ActionEditRecord, true},
		{"doctor cancel", doctor, ActionCancel, true},
		{"other doctor view", otherDoctor, ActionView, false},
		{"other doctor transition", otherDoctor, ActionTransition, false},
		{"other doctor edit", otherDoctor, ActionEditRecord, false},
		{"other doctor cancel", otherDoctor, ActionCancel, false},
		{"patient view", patient, ActionView, true},
		{"patient cancel", patient, ActionCancel, true},
		{"patient transition", patient, ActionTransition, false},
		{"patient edit", patient, ActionEditRecord, false},
		{"other patient view", otherPatient, ActionView, false},
		{"other patient cancel", otherPatient, ActionCancel, false},
		{"anonymous", Actor{}, ActionView, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.actor, tt.action, appt))
		})
	}
}

func TestCan_PatientRoleWithDoctorID(t *testing.T) {
	appt := &models.Appointment{PatientID: "p1", DoctorID: "d1"}
	// the doctor id alone does not grant doctor rights
	assert.False(t, Can(Actor{ID: "d1", Role: models.RolePatient}, ActionTransition, appt))
	assert.False(t, Can(Actor{ID: "d1", Role: models.RoleDoctor}, ActionView, nil))
}

func TestAuthorize_ReturnsForbidden(t *testing.T) {
	appt := &models.Appointment{BaseModel: models.BaseModel{ID: "a1"}, PatientID: "p1", DoctorID: "d1"}
	err := authorize(Actor{ID: "p1", Role: models.RolePatient}, ActionEditRecord, appt)
	assert.Equal(t, KindForbidden, KindOf(err))
	assert.NoError(t, authorize(Actor{ID: "p1", Role: models.RolePatient}, ActionCancel, appt))
}
