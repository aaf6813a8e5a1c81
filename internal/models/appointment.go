package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusAccepted  AppointmentStatus = "accepted"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// DefaultDurationMinutes is used when a booking does not name a duration.
const DefaultDurationMinutes = 30

var statusLabels = map[AppointmentStatus]string{
	StatusPending:   "Pending",
	StatusAccepted:  "Accepted",
	StatusRejected:  "Rejected",
	StatusCancelled: "Cancelled",
	StatusCompleted: "Completed",
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human readable form used in audit lines.
func (s AppointmentStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Appointment represents a scheduled medical appointment
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index:idx_appointment_doctor_slot;not null" json:"doctorId"`
	Description     string            `gorm:"type:text" json:"description"`
	ScheduledTime   time.Time         `gorm:"index:idx_appointment_doctor_slot;not null" json:"scheduledTime"`
	DurationMinutes int               `gorm:"default:30" json:"durationMinutes"`
	Status          AppointmentStatus `gorm:"size:20;default:'pending';index" json:"status"`
	RejectionReason *string           `gorm:"type:text" json:"rejectionReason,omitempty"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
