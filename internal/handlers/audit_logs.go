package handlers

import (
	"clinic-appointments-server/internal/pagination"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuditLogHandler exposes the audit log to admins.
type AuditLogHandler struct {
	Service *services.AuditService
}

// NewAuditLogHandler creates a new AuditLogHandler.
func NewAuditLogHandler(service *services.AuditService) *AuditLogHandler {
	return &AuditLogHandler{Service: service}
}

// AuditLogQuery holds the log search filters besides the time range.
type AuditLogQuery struct {
	SearchValue string `form:"searchValue" binding:"max=200"`
	UserID      string `form:"userId" binding:"omitempty,uuid"`
}

// ListLogs handles the paginated audit log search.
func (h *AuditLogHandler) ListLogs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var query AuditLogQuery
	if !utils.BindQuery(c, &query) {
		return
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	filter := services.AuditFilter{
		From:   from,
		To:     to,
		Search: query.SearchValue,
		UserID: query.UserID,
	}
	page, err := h.Service.Page(c.Request.Context(), actor, filter, pagination.FromContext(c))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Logs fetched successfully", page)
}
