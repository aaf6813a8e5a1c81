package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// MedicationService manages the medication inventory.
type MedicationService struct {
	db     *gorm.DB
	audit  *AuditService
	logger zerolog.Logger
}

func NewMedicationService(db *gorm.DB, audit *AuditService, logger zerolog.Logger) *MedicationService {
	return &MedicationService{db: db, audit: audit, logger: logger.With().Str("component", "medications").Logger()}
}

// MedicationFilter narrows List. Nil bounds are ignored.
type MedicationFilter struct {
	Search   string
	Category models.MedicationCategory
	Status   models.MedicationStatus
	MinPrice *int
	MaxPrice *int
	MinStock *int
	MaxStock *int
}

// MedicationInput carries the mutable medication fields. Nil means unset.
type MedicationInput struct {
	Name        *string
	Description *string
	Price       *int
	Amount      *int
	Category    *models.MedicationCategory
	Status      *models.MedicationStatus
}

// List pages through medications, most recently updated first. Admins and doctors only.
func (s *MedicationService) List(ctx context.Context, actor Actor, filter MedicationFilter, page pagination.Params) (*pagination.Result[models.Medication], error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleDoctor {
		return nil, Forbidden("not allowed to view medications")
	}

	query := s.db.WithContext(ctx).Model(&models.Medication{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}
	if filter.MinStock != nil {
		query = query.Where("amount >= ?", *filter.MinStock)
	}
	if filter.MaxStock != nil {
		query = query.Where("amount <= ?", *filter.MaxStock)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count medications: %w", err)
	}
	var meds []models.Medication
	if err := query.Scopes(page.Scope).Order("updated_at DESC").Find(&meds).Error; err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}
	return pagination.NewResult(meds, total, page), nil
}

// Create adds a medication. Admin only.
func (s *MedicationService) Create(ctx context.Context, actor Actor, in MedicationInput) (*models.Medication, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can create medications")
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, InvalidInput("name is required")
	}
	if err := validateMedicationInput(in); err != nil {
		return nil, err
	}

	med := &models.Medication{
		Name:     strings.TrimSpace(*in.Name),
		Category: models.CategoryUnknown,
		Status:   models.MedicationDisabled,
	}
	applyMedicationInput(med, in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(med).Error; err != nil {
			return fmt.Errorf("create medication: %w", err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Created medication: %s (ID: %s) | price: %d | stock: %d", med.Name, med.ID, med.Price, med.Amount))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("medication_id", med.ID).Msg("medication created")
	return med, nil
}

// Update merges the provided fields. Admin only.
func (s *MedicationService) Update(ctx context.Context, actor Actor, id string, in MedicationInput) (*models.Medication, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can update medications")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, InvalidInput("name cannot be empty")
	}
	if err := validateMedicationInput(in); err != nil {
		return nil, err
	}

	var med models.Medication
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findMedication(tx, id, &med); err != nil {
			return err
		}
		before := med
		applyMedicationInput(&med, in)
		changes := medicationChanges(before, med)
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Save(&med).Error; err != nil {
			return fmt.Errorf("update medication %s: %w", id, err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Updated medication: %s (ID: %s) | %s", med.Name, med.ID, strings.Join(changes, " | ")))
	})
	if err != nil {
		return nil, err
	}
	return &med, nil
}

// Delete removes a medication. Admin only.
func (s *MedicationService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return Forbidden("only admins can delete medications")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var med models.Medication
		if err := findMedication(tx, id, &med); err != nil {
			return err
		}
		if err := tx.Delete(&med).Error; err != nil {
			return fmt.Errorf("delete medication %s: %w", id, err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf("Deleted medication: %s (ID: %s)", med.Name, med.ID))
	})
}

func findMedication(tx *gorm.DB, id string, med *models.Medication) error {
	if err := tx.First(med, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("medication #%s not found", id)
		}
		return fmt.Errorf("get medication %s: %w", id, err)
	}
	return nil
}

func validateMedicationInput(in MedicationInput) error {
	if in.Price != nil && *in.Price < 0 {
		return InvalidInput("price cannot be negative")
	}
	if in.Amount != nil && *in.Amount < 0 {
		return InvalidInput("amount cannot be negative")
	}
	if in.Category != nil {
		switch *in.Category {
		case models.CategoryUnknown, models.CategoryPrescription, models.CategoryOTC,
			models.CategoryTraditional, models.CategoryHealthCare:
		default:
			return InvalidInput("unknown category %q", *in.Category)
		}
	}
	if in.Status != nil && *in.Status != models.MedicationEnabled && *in.Status != models.MedicationDisabled {
		return InvalidInput("unknown status %q", *in.Status)
	}
	return nil
}

func applyMedicationInput(med *models.Medication, in MedicationInput) {
	if in.Name != nil {
		med.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		med.Description = *in.Description
	}
	if in.Price != nil {
		med.Price = *in.Price
	}
	if in.Amount != nil {
		med.Amount = *in.Amount
	}
	if in.Category != nil {
		med.Category = *in.Category
	}
	if in.Status != nil {
		med.Status = *in.Status
	}
}

func medicationChanges(before, after models.Medication) []string {
	var changes []string
	if before.Name != after.Name {
		changes = append(changes, fmt.Sprintf("name %s -> %s", before.Name, after.Name))
	}
	if before.Description != after.Description {
		changes = append(changes, fmt.Sprintf("description %s -> %s", before.Description, after.Description))
	}
	if before.Price != after.Price {
		changes = append(changes, fmt.Sprintf("price %d -> %d", before.Price, after.Price))
	}
	if before.Amount != after.Amount {
		changes = append(changes, fmt.Sprintf("stock %d -> %d", before.Amount, after.Amount))
	}
	if before.Category != after.Category {
		changes = append(changes, fmt.Sprintf("category %s -> %s", before.Category, after.Category))
	}
	if before.Status != after.Status {
		changes = append(changes, fmt.Sprintf("status %s -> %s", before.Status, after.Status))
	}
	return changes
}
