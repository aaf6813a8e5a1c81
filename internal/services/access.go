package services

import (
	"clinic-appointments-server/internal/models"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// Action names something an actor may try to do with an appointment.
type Action string

const (
	ActionView       Action = "view"
	ActionCancel     Action = "cancel"
	ActionTransition Action = "transition"
	ActionEditRecord Action = "edit_record"
)

// Can is the single capability check shared by every appointment operation.
// Admins may do anything. The assigned doctor may do anything to their own
// appointments. The patient may only view and cancel.
func Can(actor Actor, action Action, appt *models.Appointment) bool {
	if appt == nil || actor.ID == "" {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if isAssignedDoctor(actor, appt) {
		return true
	}
	switch action {
	case ActionView, ActionCancel:
		return actor.ID == appt.PatientID
	}
	return false
}

func isAssignedDoctor(actor Actor, appt *models.Appointment) bool {
	return actor.Role == models.RoleDoctor && actor.ID == appt.DoctorID
}

// authorize wraps Can with the error returned to callers.
func authorize(actor Actor, action Action, appt *models.Appointment) error {
	if !Can(actor, action, appt) {
		return Forbidden("not allowed to %s appointment #%s", actionVerb(action), appt.ID)
	}
	return nil
}

func actionVerb(a Action) string {
	switch a {
	case ActionEditRecord:
		return "edit the record of"
	case ActionTransition:
		return "change the status of"
	}
	return string(a)
}
