package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxDurationMinutes = 480

// transitions lists the status changes reachable through Transition.
// Cancellation is handled by Cancel.
var transitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusPending:  {models.StatusAccepted, models.StatusRejected},
	models.StatusAccepted: {models.StatusCompleted},
}

var cancellable = map[models.AppointmentStatus]bool{
	models.StatusPending:  true,
	models.StatusAccepted: true,
}

func canTransition(from, to models.AppointmentStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AppointmentService owns the appointment lifecycle.
type AppointmentService struct {
	db        *gorm.DB
	directory Directory
	audit     *AuditService
	logger    zerolog.Logger
	now       func() time.Time
}

func NewAppointmentService(db *gorm.DB, directory Directory, audit *AuditService, logger zerolog.Logger) *AppointmentService {
	return &AppointmentService{
		db:        db,
		directory: directory,
		audit:     audit,
		logger:    logger.With().Str("component", "appointments").Logger(),
		now:       time.Now,
	}
}

// CreateAppointmentInput is a booking request made by the acting patient.
type CreateAppointmentInput struct {
	DoctorID        string
	ScheduledTime   time.Time
	DurationMinutes int
	Description     string
}

// TransitionInput names the target status of a Transition.
type TransitionInput struct {
	Status          models.AppointmentStatus
	RejectionReason string
}

// AppointmentFilter narrows List. Zero values are ignored.
type AppointmentFilter struct {
	Status    models.AppointmentStatus
	DoctorID  string
	PatientID string
	From      *time.Time
	To        *time.Time
}

// AppointmentView is an appointment with the display fields of both parties.
type AppointmentView struct {
	models.Appointment
	Doctor  *models.UserSanitized `json:"doctor,omitempty"`
	Patient *models.UserSanitized `json:"patient,omitempty"`
}

func newAppointmentView(a models.Appointment) AppointmentView {
	v := AppointmentView{Appointment: a}
	if a.Doctor.ID != "" {
		d := a.Doctor.Sanitize()
		v.Doctor = &d
	}
	if a.Patient.ID != "" {
		p := a.Patient.Sanitize()
		v.Patient = &p
	}
	return v
}

// Create books a pending appointment for actor with the given doctor.
func (s *AppointmentService) Create(ctx context.Context, actor Actor, in CreateAppointmentInput) (*models.Appointment, error) {
	doctor, err := s.directory.FindUserByID(ctx, in.DoctorID)
	if err != nil {
		if IsKind(err, KindNotFound) {
			return nil, NotFound("doctor #%s not found", in.DoctorID)
		}
		return nil, err
	}
	if doctor.Role != models.RoleDoctor {
		return nil, NotFound("doctor #%s not found", in.DoctorID)
	}
	if doctor.ID == actor.ID {
		return nil, InvalidInput("cannot book an appointment with yourself")
	}

	if in.ScheduledTime.IsZero() {
		return nil, InvalidInput("scheduledTime is required")
	}
	scheduled := in.ScheduledTime.UTC().Truncate(time.Second)
	if scheduled.Before(s.now().UTC()) {
		return nil, InvalidInput("scheduledTime must not be in the past")
	}

	duration := in.DurationMinutes
	if duration == 0 {
		duration = models.DefaultDurationMinutes
	}
	if duration < 1 || duration > maxDurationMinutes {
		return nil, InvalidInput("durationMinutes must be between 1 and %d", maxDurationMinutes)
	}

	appt := &models.Appointment{
		PatientID:       actor.ID,
		DoctorID:        doctor.ID,
		Description:     strings.TrimSpace(in.Description),
		ScheduledTime:   scheduled,
		DurationMinutes: duration,
		Status:          models.StatusPending,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockDoctor(tx, doctor.ID); err != nil {
			return err
		}
		if err := ensureSlotFree(tx, doctor.ID, scheduled, ""); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(appt).Error; err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Created appointment #%s | doctor: %s | time: %s",
			appt.ID, doctor.ID, scheduled.Format(time.RFC3339)))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", appt.DoctorID).
		Str("patient_id", appt.PatientID).
		Time("scheduled_time", appt.ScheduledTime).
		Msg("appointment created")
	return appt, nil
}

// Get returns one appointment the actor may view.
func (s *AppointmentService) Get(ctx context.Context, actor Actor, id string) (*AppointmentView, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Preload("Doctor").Preload("Patient").First(&appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("appointment #%s not found", id)
		}
		return nil, fmt.Errorf("get appointment %s: %w", id, err)
	}
	if err := authorize(actor, ActionView, &appt); err != nil {
		return nil, err
	}
	v := newAppointmentView(appt)
	return &v, nil
}

// Transition moves an appointment to a new status. Cancellation is
// delegated to Cancel so patients keep their right to cancel.
func (s *AppointmentService) Transition(ctx context.Context, actor Actor, id string, in TransitionInput) (*models.Appointment, error) {
	if in.Status == models.StatusCancelled {
		return s.Cancel(ctx, actor, id)
	}
	if !in.Status.Valid() {
		return nil, InvalidInput("unknown status %q", in.Status)
	}

	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAppointment(tx, id, &appt); err != nil {
			return err
		}
		if err := authorize(actor, ActionTransition, &appt); err != nil {
			return err
		}
		from := appt.Status
		if !canTransition(from, in.Status) {
			return InvalidTransition("cannot change appointment #%s from %s to %s", appt.ID, from, in.Status)
		}

		updates := map[string]interface{}{"status": in.Status}
		reason := strings.TrimSpace(in.RejectionReason)
		if in.Status == models.StatusRejected && reason != "" {
			updates["rejection_reason"] = reason
		}

		if in.Status == models.StatusAccepted {
			if err := lockDoctor(tx, appt.DoctorID); err != nil {
				return err
			}
			if err := ensureSlotFree(tx, appt.DoctorID, appt.ScheduledTime, appt.ID); err != nil {
				return err
			}
		}

		if err := swapStatus(tx, &appt, from, updates); err != nil {
			return err
		}

		if in.Status == models.StatusAccepted {
			record := models.MedicalRecord{
				AppointmentID:  appt.ID,
				PatientID:      appt.PatientID,
				DoctorID:       appt.DoctorID,
				ChiefComplaint: appt.Description,
				Status:         models.RecordStatusDraft,
			}
			if err := tx.Omit(clause.Associations).Create(&record).Error; err != nil {
				return fmt.Errorf("create medical record: %w", err)
			}
		}

		msg := statusChangeMessage(appt.ID, from, in.Status)
		if in.Status == models.StatusRejected && reason != "" {
			msg += "\nrejection reason: " + reason
		}
		return s.audit.Append(tx, actor.ID, msg)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", appt.ID).
		Str("actor_id", actor.ID).
		Str("status", string(appt.Status)).
		Msg("appointment status changed")
	return &appt, nil
}

// Cancel cancels a pending or accepted appointment. The patient, the
// assigned doctor and admins may cancel.
func (s *AppointmentService) Cancel(ctx context.Context, actor Actor, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockAppointment(tx, id, &appt); err != nil {
			return err
		}
		if err := authorize(actor, ActionCancel, &appt); err != nil {
			return err
		}
		from := appt.Status
		if !cancellable[from] {
			return InvalidTransition("cannot cancel appointment #%s in status %s", appt.ID, from)
		}
		if err := swapStatus(tx, &appt, from, map[string]interface{}{"status": models.StatusCancelled}); err != nil {
			return err
		}
		return s.audit.Append(tx, actor.ID, statusChangeMessage(appt.ID, from, models.StatusCancelled))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("appointment_id", appt.ID).Str("actor_id", actor.ID).Msg("appointment cancelled")
	return &appt, nil
}

// List pages through the appointments visible to actor, newest first.
func (s *AppointmentService) List(ctx context.Context, actor Actor, filter AppointmentFilter, page pagination.Params) (*pagination.Result[AppointmentView], error) {
	query := s.db.WithContext(ctx).Model(&models.Appointment{})

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", actor.ID)
	case models.RolePatient:
		query = query.Where("patient_id = ?", actor.ID)
	default:
		return nil, Forbidden("role %q cannot list appointments", actor.Role)
	}

	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, InvalidInput("unknown status %q", filter.Status)
		}
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DoctorID != "" {
		query = query.Where("doctor_id = ?", filter.DoctorID)
	}
	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.From != nil {
		query = query.Where("scheduled_time >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("scheduled_time <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}

	var appts []models.Appointment
	err := query.Preload("Doctor").Preload("Patient").
		Scopes(page.Scope).
		Order("created_at DESC").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	views := make([]AppointmentView, 0, len(appts))
	for _, a := range appts {
		views = append(views, newAppointmentView(a))
	}
	return pagination.NewResult(views, total, page), nil
}

func lockAppointment(tx *gorm.DB, id string, appt *models.Appointment) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(appt, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("appointment #%s not found", id)
		}
		return fmt.Errorf("lock appointment %s: %w", id, err)
	}
	return nil
}

// lockDoctor serialises bookings and acceptances per doctor.
func lockDoctor(tx *gorm.DB, doctorID string) error {
	var doctor models.User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&doctor, "id = ? AND role = ?", doctorID, models.RoleDoctor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("doctor #%s not found", doctorID)
		}
		return fmt.Errorf("lock doctor %s: %w", doctorID, err)
	}
	return nil
}

// ensureSlotFree fails with Conflict when the doctor already holds an
// accepted appointment at exactly that time.
func ensureSlotFree(tx *gorm.DB, doctorID string, at time.Time, exceptID string) error {
	query := tx.Model(&models.Appointment{}).
		Where("doctor_id = ? AND scheduled_time = ? AND status = ?", doctorID, at.UTC(), models.StatusAccepted)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return fmt.Errorf("check doctor slot: %w", err)
	}
	if n > 0 {
		return Conflict("doctor already has an accepted appointment at %s", at.UTC().Format(time.RFC3339))
	}
	return nil
}

// swapStatus updates the row only if it still holds the status read under
// the lock, then reloads appt.
func swapStatus(tx *gorm.DB, appt *models.Appointment, from models.AppointmentStatus, updates map[string]interface{}) error {
	res := tx.Model(&models.Appointment{}).
		Where("id = ? AND status = ?", appt.ID, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update appointment %s: %w", appt.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return InvalidTransition("appointment #%s is no longer %s", appt.ID, from)
	}
	if err := tx.First(appt, "id = ?", appt.ID).Error; err != nil {
		return fmt.Errorf("reload appointment %s: %w", appt.ID, err)
	}
	return nil
}

func statusChangeMessage(id string, from, to models.AppointmentStatus) string {
	return fmt.Sprintf("Updated appointment #%s: status %q -> %q", id, from.Label(), to.Label())
}
