package handlers

import (
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves read-only directory lookups.
type UserHandler struct {
	Directory *services.UserDirectory
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(directory *services.UserDirectory) *UserHandler {
	return &UserHandler{Directory: directory}
}

// GetDoctors handles listing doctors so patients can pick one to book.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	if _, ok := requireActor(c); !ok {
		return
	}

	doctors, err := h.Directory.ListDoctors(c.Request.Context())
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	sanitized := make([]models.UserSanitized, len(doctors))
	for i, d := range doctors {
		sanitized[i] = d.Sanitize()
	}

	utils.Success(c, "Doctors fetched successfully", sanitized)
}

// GetProfile handles fetching the caller's own directory entry.
func (h *UserHandler) GetProfile(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	user, err := h.Directory.GetProfile(c.Request.Context(), actor)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// PatientQuery holds the patient search term.
type PatientQuery struct {
	SearchValue string `form:"searchValue" binding:"max=100"`
}

// GetPatients handles the patient lookup used by doctors and admins.
func (h *UserHandler) GetPatients(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var query PatientQuery
	if !utils.BindQuery(c, &query) {
		return
	}

	page, err := h.Directory.ListPatients(c.Request.Context(), actor, query.SearchValue, pagination.FromContext(c))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Patients fetched successfully", page)
}

// GetPatient handles fetching one patient's directory entry.
func (h *UserHandler) GetPatient(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.Directory.GetPatient(c.Request.Context(), actor, id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Patient fetched successfully", user.Sanitize())
}
