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
)

// AnnouncementScope selects which announcements List returns.
type AnnouncementScope string

const (
	// ScopeValid returns entries that have not expired yet.
	ScopeValid AnnouncementScope = "valid"
	// ScopeAll includes expired entries. Admin only.
	ScopeAll AnnouncementScope = "all"
)

const excerptLength = 20

// AnnouncementService manages the clinic bulletin board.
type AnnouncementService struct {
	db     *gorm.DB
	audit  *AuditService
	logger zerolog.Logger
	now    func() time.Time
}

func NewAnnouncementService(db *gorm.DB, audit *AuditService, logger zerolog.Logger) *AnnouncementService {
	return &AnnouncementService{
		db:     db,
		audit:  audit,
		logger: logger.With().Str("component", "announcements").Logger(),
		now:    time.Now,
	}
}

// AnnouncementFilter narrows List. Zero values are ignored.
type AnnouncementFilter struct {
	Scope  AnnouncementScope
	Search string
	Type   models.AnnouncementType
	IsTop  *bool
	From   *time.Time
	To     *time.Time
}

// AnnouncementInput carries the mutable announcement fields. Nil means unset.
type AnnouncementInput struct {
	Title       *string
	Description *string
	Type        *models.AnnouncementType
	IsTop       *bool
	ExpireDate  *time.Time
}

// List pages through announcements, pinned entries first and then newest first.
func (s *AnnouncementService) List(ctx context.Context, actor Actor, filter AnnouncementFilter, page pagination.Params) (*pagination.Result[models.Announcement], error) {
	if !actor.Role.Valid() {
		return nil, Forbidden("role %q cannot read announcements", actor.Role)
	}

	query := s.db.WithContext(ctx).Model(&models.Announcement{})
	switch filter.Scope {
	case "", ScopeValid:
		query = query.Where("expire_date > ?", s.now().UTC())
	case ScopeAll:
		if !actor.IsAdmin() {
			return nil, Forbidden("only admins can list expired announcements")
		}
	default:
		return nil, InvalidInput("unknown scope %q", filter.Scope)
	}

	if filter.Type != "" {
		if !filter.Type.Valid() {
			return nil, InvalidInput("unknown announcement type %q", filter.Type)
		}
		query = query.Where("type = ?", filter.Type)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}
	if filter.IsTop != nil {
		query = query.Where("is_top = ?", *filter.IsTop)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count announcements: %w", err)
	}
	var list []models.Announcement
	if err := query.Scopes(page.Scope).Order("is_top DESC").Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return pagination.NewResult(list, total, page), nil
}

// Create publishes an announcement. Admin only.
func (s *AnnouncementService) Create(ctx context.Context, actor Actor, in AnnouncementInput) (*models.Announcement, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can publish announcements")
	}
	switch {
	case in.Title == nil || strings.TrimSpace(*in.Title) == "":
		return nil, InvalidInput("title is required")
	case in.Description == nil || strings.TrimSpace(*in.Description) == "":
		return nil, InvalidInput("description is required")
	case in.Type == nil:
		return nil, InvalidInput("type is required")
	case in.ExpireDate == nil || in.ExpireDate.IsZero():
		return nil, InvalidInput("expireDate is required")
	}
	if err := validateAnnouncementInput(in); err != nil {
		return nil, err
	}
	if !in.ExpireDate.After(s.now()) {
		return nil, InvalidInput("expireDate must be in the future")
	}

	a := &models.Announcement{}
	applyAnnouncementInput(a, in)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(a).Error; err != nil {
			return fmt.Errorf("create announcement: %w", err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Created %s #%s | title: %s%s", a.Type, a.ID, a.Title, pinnedSuffix(a.IsTop)))
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("announcement_id", a.ID).Str("type", string(a.Type)).Msg("announcement created")
	return a, nil
}

// Update merges the provided fields and records what changed. Admin only.
func (s *AnnouncementService) Update(ctx context.Context, actor Actor, id string, in AnnouncementInput) (*models.Announcement, error) {
	if !actor.IsAdmin() {
		return nil, Forbidden("only admins can update announcements")
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, InvalidInput("title cannot be empty")
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return nil, InvalidInput("description cannot be empty")
	}
	if in.ExpireDate != nil && in.ExpireDate.IsZero() {
		return nil, InvalidInput("expireDate cannot be empty")
	}
	if err := validateAnnouncementInput(in); err != nil {
		return nil, err
	}

	var a models.Announcement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := findAnnouncement(tx, id, &a); err != nil {
			return err
		}
		before := a
		applyAnnouncementInput(&a, in)
		changes := announcementChanges(before, a)
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Save(&a).Error; err != nil {
			return fmt.Errorf("update announcement %s: %w", id, err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Updated %s #%s:\n%s", a.Type, a.ID, strings.Join(changes, "\n")))
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an announcement. Admin only.
func (s *AnnouncementService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return Forbidden("only admins can delete announcements")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Announcement
		if err := findAnnouncement(tx, id, &a); err != nil {
			return err
		}
		if err := tx.Delete(&a).Error; err != nil {
			return fmt.Errorf("delete announcement %s: %w", id, err)
		}
		return s.audit.Append(tx, actor.ID, fmt.Sprintf(
			"Deleted %s #%s | title: %s%s", a.Type, a.ID, a.Title, pinnedSuffix(a.IsTop)))
	})
}

func findAnnouncement(tx *gorm.DB, id string, a *models.Announcement) error {
	if err := tx.First(a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("announcement #%s not found", id)
		}
		return fmt.Errorf("get announcement %s: %w", id, err)
	}
	return nil
}

func validateAnnouncementInput(in AnnouncementInput) error {
	if in.Type != nil && !in.Type.Valid() {
		return InvalidInput("unknown announcement type %q", *in.Type)
	}
	if in.Title != nil && len([]rune(strings.TrimSpace(*in.Title))) > 255 {
		return InvalidInput("title must be at most 255 characters")
	}
	return nil
}

func applyAnnouncementInput(a *models.Announcement, in AnnouncementInput) {
	if in.Title != nil {
		a.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		a.Description = *in.Description
	}
	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.IsTop != nil {
		a.IsTop = *in.IsTop
	}
	if in.ExpireDate != nil {
		a.ExpireDate = in.ExpireDate.UTC()
	}
}

func announcementChanges(before, after models.Announcement) []string {
	var changes []string
	if before.Title != after.Title {
		changes = append(changes, fmt.Sprintf("title %q -> %q", before.Title, after.Title))
	}
	if before.Type != after.Type {
		changes = append(changes, fmt.Sprintf("type %q -> %q", before.Type, after.Type))
	}
	if before.Description != after.Description {
		changes = append(changes, fmt.Sprintf("content %q -> %q", excerpt(before.Description), excerpt(after.Description)))
	}
	if before.IsTop != after.IsTop {
		if after.IsTop {
			changes = append(changes, "pinned")
		} else {
			changes = append(changes, "unpinned")
		}
	}
	if !before.ExpireDate.Equal(after.ExpireDate) {
		changes = append(changes, fmt.Sprintf("expires %s -> %s",
			before.ExpireDate.UTC().Format(time.RFC3339), after.ExpireDate.UTC().Format(time.RFC3339)))
	}
	return changes
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptLength {
		return s
	}
	return string(r[:excerptLength]) + "..."
}

func pinnedSuffix(pinned bool) string {
	if pinned {
		return " [pinned]"
	}
	return ""
}
