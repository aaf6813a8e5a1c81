package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AuditService is the append-only audit sink plus its admin query.
type AuditService struct {
	db     *gorm.DB
	logger zerolog.Logger
}

func NewAuditService(db *gorm.DB, logger zerolog.Logger) *AuditService {
	return &AuditService{db: db, logger: logger.With().Str("component", "audit").Logger()}
}

// Append writes one line with the caller's transaction handle so the entry
// commits or rolls back together with the change it describes.
func (s *AuditService) Append(tx *gorm.DB, actorID, message string) error {
	entry := models.AuditLog{UserID: actorID, Action: message}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	s.logger.Info().Str("actor_id", actorID).Str("audit_id", entry.ID).Msg(message)
	return nil
}

// AuditFilter narrows an audit page. Zero values are ignored.
type AuditFilter struct {
	From   *time.Time
	To     *time.Time
	Search string
	UserID string
}

// Page lists audit entries newest first. Admin only.
func (s *AuditService) Page(ctx context.Context, actor Actor, filter AuditFilter, page pagination.Params) (*pagination.Result[models.AuditLog], error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can read the audit log")
	}

	query := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("action LIKE ?", "%"+search+"%")
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count audit logs: %w", err)
	}

	var logs []models.AuditLog
	if err := query.Scopes(page.Scope).Order("created_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return pagination.NewResult(logs, total, page), nil
}
