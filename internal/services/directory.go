package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"gorm.io/gorm"
)

// Directory resolves user ids to accounts.
type Directory interface {
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// UserDirectory is the gorm-backed Directory over the users table.
type UserDirectory struct {
	db *gorm.DB
}

func NewUserDirectory(db *gorm.DB) *UserDirectory {
	return &UserDirectory{db: db}
}

// FindUserByID returns NotFound when no such user exists.
func (d *UserDirectory) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("user #%s not found", id)
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

// ListDoctors returns every doctor ordered by name.
func (d *UserDirectory) ListDoctors(ctx context.Context) ([]models.User, error) {
	var doctors []models.User
	err := d.db.WithContext(ctx).
		Where("role = ?", models.RoleDoctor).
		Order("last_name ASC, first_name ASC").
		Find(&doctors).Error
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return doctors, nil
}

// GetProfile returns the actor's own directory entry.
func (d *UserDirectory) GetProfile(ctx context.Context, actor Actor) (*models.User, error) {
	return d.FindUserByID(ctx, actor.ID)
}

// ListPatients pages through patients matching search on email or name.
// Admins and doctors only.
func (d *UserDirectory) ListPatients(ctx context.Context, actor Actor, search string, page pagination.Params) (*pagination.Result[models.UserSanitized], error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleDoctor {
		return nil, Forbidden("not allowed to list patients")
	}

	query := d.db.WithContext(ctx).Model(&models.User{}).Where("role = ?", models.RolePatient)
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}
	var patients []models.User
	if err := query.Scopes(page.Scope).Order("last_name ASC, first_name ASC").Find(&patients).Error; err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	sanitized := make([]models.UserSanitized, len(patients))
	for i, p := range patients {
		sanitized[i] = p.Sanitize()
	}
	return pagination.NewResult(sanitized, total, page), nil
}

// GetPatient returns one patient. Admins, doctors and the patient themself may read it.
func (d *UserDirectory) GetPatient(ctx context.Context, actor Actor, id string) (*models.User, error) {
	if actor.Role != models.RoleAdmin && actor.Role != models.RoleDoctor && actor.ID != id {
		return nil, Forbidden("not allowed to view patient #%s", id)
	}
	user, err := d.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != models.RolePatient {
		return nil, NotFound("patient #%s not found", id)
	}
	return user, nil
}
