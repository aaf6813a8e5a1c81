package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"clinic-appointments-server/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordService manages the medical record and prescriptions of an appointment.
type RecordService struct {
	db     *gorm.DB
	audit  *AuditService
	logger zerolog.Logger
}

func NewRecordService(db *gorm.DB, audit *AuditService, logger zerolog.Logger) *RecordService {
	return &RecordService{db: db, audit: audit, logger: logger.With().Str("component", "records").Logger()}
}

// RecordFields lists the record columns a doctor may change. Nil means unchanged.
type RecordFields struct {
	ChiefComplaint *string
	PresentIllness *string
	PastHistory    *string
	PhysicalExam   *string
	Diagnosis      *string
	TreatmentPlan  *string
	Note           *string
	Status         *models.MedicalRecordStatus
}

// PrescriptionFields is one prescription entry of an update. An empty ID
// creates a new prescription.
type PrescriptionFields struct {
	ID          string
	Type        *models.PrescriptionType
	Description *string
	Frequency   *string
	Dosage      *string
	Duration    *int
	Note        *string
	Status      *models.PrescriptionStatus
}

// UpdateRecordInput is the body of UpdateRecord.
type UpdateRecordInput struct {
	Record        RecordFields
	Prescriptions []PrescriptionFields
}

// PrescriptionDetail is a prescription with its doctor's display fields.
type PrescriptionDetail struct {
	models.Prescription
	DoctorName  string `json:"doctorName"`
	DoctorEmail string `json:"doctorEmail"`
}

// RecordDetail is what GetRecord returns.
type RecordDetail struct {
	Record        models.MedicalRecord  `json:"record"`
	Doctor        *models.UserSanitized `json:"doctor,omitempty"`
	Prescriptions []PrescriptionDetail  `json:"prescriptions"`
}

// GetRecord returns the record of an appointment the actor may view.
func (s *RecordService) GetRecord(ctx context.Context, actor Actor, appointmentID string) (*RecordDetail, error) {
	db := s.db.WithContext(ctx)

	appt, err := findAppointment(db, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, ActionView, appt); err != nil {
		return nil, err
	}

	var record models.MedicalRecord
	err = db.Preload("Doctor").
		Preload("Prescriptions", func(tx *gorm.DB) *gorm.DB { return tx.Order("created_at ASC") }).
		Preload("Prescriptions.Doctor").
		First(&record, "appointment_id = ?", appt.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("appointment #%s has no medical record", appt.ID)
		}
		return nil, fmt.Errorf("get medical record: %w", err)
	}

	detail := &RecordDetail{Record: record, Prescriptions: make([]PrescriptionDetail, 0, len(record.Prescriptions))}
	if record.Doctor.ID != "" {
		d := record.Doctor.Sanitize()
		detail.Doctor = &d
	}
	for _, p := range record.Prescriptions {
		detail.Prescriptions = append(detail.Prescriptions, PrescriptionDetail{
			Prescription: p,
			DoctorName:   p.Doctor.DisplayName(),
			DoctorEmail:  p.Doctor.Email,
		})
	}
	return detail, nil
}

// UpdateRecord merges whitelisted record fields and upserts prescriptions
// in one transaction.
func (s *RecordService) UpdateRecord(ctx context.Context, actor Actor, appointmentID string, in UpdateRecordInput) (*RecordDetail, error) {
	if err := validateRecordInput(in); err != nil {
		return nil, err
	}

	var created, updated int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := findAppointment(tx, appointmentID)
		if err != nil {
			return err
		}
		if err := authorize(actor, ActionEditRecord, appt); err != nil {
			return err
		}
		record, err := lockRecord(tx, appt.ID)
		if err != nil {
			return err
		}

		if changes := recordUpdates(in.Record); len(changes) > 0 {
			if err := tx.Model(&models.MedicalRecord{}).Where("id = ?", record.ID).Updates(changes).Error; err != nil {
				return fmt.Errorf("update medical record: %w", err)
			}
		}

		for _, p := range in.Prescriptions {
			if p.ID == "" {
				if err := createPrescription(tx, actor, appt, record, p); err != nil {
					return err
				}
				created++
				continue
			}
			changes := prescriptionUpdates(p)
			if len(changes) == 0 {
				continue
			}
			// entries that belong to another record are skipped
			res := tx.Model(&models.Prescription{}).
				Where("id = ? AND record_id = ?", p.ID, record.ID).
				Updates(changes)
			if res.Error != nil {
				return fmt.Errorf("update prescription %s: %w", p.ID, res.Error)
			}
			updated += int(res.RowsAffected)
		}

		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Updated medical record of appointment #%s: %s | prescriptions added: %d, updated: %d",
			appt.ID, describeRecordChanges(in.Record), created, updated))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", appointmentID).
		Str("actor_id", actor.ID).
		Int("prescriptions_created", created).
		Int("prescriptions_updated", updated).
		Msg("medical record updated")
	return s.GetRecord(ctx, actor, appointmentID)
}

// DeletePrescription permanently removes one prescription of the record.
func (s *RecordService) DeletePrescription(ctx context.Context, actor Actor, appointmentID, prescriptionID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		appt, err := findAppointment(tx, appointmentID)
		if err != nil {
			return err
		}
		if err := authorize(actor, ActionEditRecord, appt); err != nil {
			return err
		}
		record, err := lockRecord(tx, appt.ID)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND record_id = ?", prescriptionID, record.ID).Delete(&models.Prescription{})
		if res.Error != nil {
			return fmt.Errorf("delete prescription %s: %w", prescriptionID, res.Error)
		}
		if res.RowsAffected == 0 {
			return NotFound("prescription #%s not found", prescriptionID)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Deleted prescription #%s from appointment #%s", prescriptionID, appt.ID))
	})
	if err != nil {
		return err
	}
	s.logger.Info().Str("appointment_id", appointmentID).Str("prescription_id", prescriptionID).Msg("prescription deleted")
	return nil
}

func findAppointment(db *gorm.DB, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := db.First(&appt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("appointment #%s not found", id)
		}
		return nil, fmt.Errorf("get appointment %s: %w", id, err)
	}
	return &appt, nil
}

func lockRecord(tx *gorm.DB, appointmentID string) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "appointment_id = ?", appointmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("appointment #%s has no medical record", appointmentID)
		}
		return nil, fmt.Errorf("lock medical record: %w", err)
	}
	return &record, nil
}

func createPrescription(tx *gorm.DB, actor Actor, appt *models.Appointment, record *models.MedicalRecord, p PrescriptionFields) error {
	rx := models.Prescription{
		RecordID:    record.ID,
		PatientID:   appt.PatientID,
		DoctorID:    actor.ID,
		Type:        models.PrescriptionMedication,
		Description: strings.TrimSpace(*p.Description),
		Status:      models.PrescriptionPending,
	}
	if p.Type != nil {
		rx.Type = *p.Type
	}
	if p.Frequency != nil {
		rx.Frequency = *p.Frequency
	}
	if p.Dosage != nil {
		rx.Dosage = *p.Dosage
	}
	if p.Duration != nil {
		rx.Duration = p.Duration
	}
	if p.Note != nil {
		rx.Note = *p.Note
	}
	if p.Status != nil {
		rx.Status = *p.Status
	}
	if err := tx.Omit(clause.Associations).Create(&rx).Error; err != nil {
		return fmt.Errorf("create prescription: %w", err)
	}
	return nil
}

func validateRecordInput(in UpdateRecordInput) error {
	if st := in.Record.Status; st != nil && *st != models.RecordStatusDraft && *st != models.RecordStatusFinal {
		return InvalidInput("unknown record status %q", *st)
	}
	for i, p := range in.Prescriptions {
		if p.ID == "" && (p.Description == nil || strings.TrimSpace(*p.Description) == "") {
			return InvalidInput("prescriptions[%d]: description is required", i)
		}
		if p.ID != "" && p.Description != nil && strings.TrimSpace(*p.Description) == "" {
			return InvalidInput("prescriptions[%d]: description cannot be empty", i)
		}
		if p.Type != nil && !validPrescriptionType(*p.Type) {
			return InvalidInput("prescriptions[%d]: unknown type %q", i, *p.Type)
		}
		if p.Status != nil && !validPrescriptionStatus(*p.Status) {
			return InvalidInput("prescriptions[%d]: unknown status %q", i, *p.Status)
		}
		if p.Duration != nil && *p.Duration < 0 {
			return InvalidInput("prescriptions[%d]: duration cannot be negative", i)
		}
	}
	return nil
}

func validPrescriptionType(t models.PrescriptionType) bool {
	switch t {
	case models.PrescriptionMedication, models.PrescriptionExamination, models.PrescriptionOther:
		return true
	}
	return false
}

func validPrescriptionStatus(s models.PrescriptionStatus) bool {
	switch s {
	case models.PrescriptionPending, models.PrescriptionProcessing, models.PrescriptionCompleted, models.PrescriptionCancelled:
		return true
	}
	return false
}

func recordUpdates(f RecordFields) map[string]interface{} {
	m := map[string]interface{}{}
	setString(m, "chief_complaint", f.ChiefComplaint)
	setString(m, "present_illness", f.PresentIllness)
	setString(m, "past_history", f.PastHistory)
	setString(m, "physical_exam", f.PhysicalExam)
	setString(m, "diagnosis", f.Diagnosis)
	setString(m, "treatment_plan", f.TreatmentPlan)
	setString(m, "note", f.Note)
	if f.Status != nil {
		m["status"] = *f.Status
	}
	return m
}

func prescriptionUpdates(p PrescriptionFields) map[string]interface{} {
	m := map[string]interface{}{}
	if p.Type != nil {
		m["type"] = *p.Type
	}
	if p.Description != nil {
		m["description"] = strings.TrimSpace(*p.Description)
	}
	setString(m, "frequency", p.Frequency)
	setString(m, "dosage", p.Dosage)
	if p.Duration != nil {
		m["duration"] = *p.Duration
	}
	setString(m, "note", p.Note)
	if p.Status != nil {
		m["status"] = *p.Status
	}
	return m
}

func setString(m map[string]interface{}, column string, v *string) {
	if v != nil {
		m[column] = *v
	}
}

func describeRecordChanges(f RecordFields) string {
	var fields []string
	for column := range recordUpdates(f) {
		fields = append(fields, column)
	}
	if len(fields) == 0 {
		return "no record fields changed"
	}
	sort.Strings(fields)
	return "changed " + strings.Join(fields, ", ")
}
