package handlers

import (
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AnnouncementHandler serves the clinic bulletin board.
type AnnouncementHandler struct {
	Service *services.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(service *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{Service: service}
}

// AnnouncementQuery holds the list filters besides the creation time range.
type AnnouncementQuery struct {
	GetType     services.AnnouncementScope `form:"getType" binding:"omitempty,oneof=valid all"`
	SearchValue string                     `form:"searchValue" binding:"max=255"`
	Type        models.AnnouncementType    `form:"type" binding:"omitempty,oneof=notice policy announcement"`
	IsTop       *bool                      `form:"isTop"`
}

// AnnouncementRequest is the body of create and update. Omitted fields are unchanged.
type AnnouncementRequest struct {
	Title       *string                  `json:"title" binding:"omitempty,max=255"`
	Description *string                  `json:"description"`
	Type        *models.AnnouncementType `json:"type"`
	IsTop       *bool                    `json:"isTop"`
	ExpireDate  *time.Time               `json:"expireDate"`
}

func (r AnnouncementRequest) toInput() services.AnnouncementInput {
	return services.AnnouncementInput{
		Title:       r.Title,
		Description: r.Description,
		Type:        r.Type,
		IsTop:       r.IsTop,
		ExpireDate:  r.ExpireDate,
	}
}

// ListAnnouncements handles the announcement list, pinned entries first.
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var query AnnouncementQuery
	if !utils.BindQuery(c, &query) {
		return
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	filter := services.AnnouncementFilter{
		Scope:  query.GetType,
		Search: query.SearchValue,
		Type:   query.Type,
		IsTop:  query.IsTop,
		From:   from,
		To:     to,
	}
	page, err := h.Service.List(c.Request.Context(), actor, filter, pagination.FromContext(c))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Announcements fetched successfully", page)
}

// CreateAnnouncement handles publishing an announcement.
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req AnnouncementRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	a, err := h.Service.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Announcement created successfully", a)
}

// UpdateAnnouncement handles a partial announcement update.
func (h *AnnouncementHandler) UpdateAnnouncement(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AnnouncementRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	a, err := h.Service.Update(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Announcement updated successfully", a)
}

// DeleteAnnouncement handles removing an announcement.
func (h *AnnouncementHandler) DeleteAnnouncement(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), actor, id); err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Announcement deleted successfully", nil)
}
