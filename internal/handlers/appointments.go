package handlers

import (
	"time"

	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Service *services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{Service: service}
}

// CreateAppointmentRequest represents the request body for creating an appointment.
// The patient is always the authenticated caller.
type CreateAppointmentRequest struct {
	DoctorID        string    `json:"doctorId" binding:"required,uuid"`
	ScheduledTime   time.Time `json:"scheduledTime"`
	DurationMinutes int       `json:"durationMinutes" binding:"omitempty,min=1,max=480"`
	Description     string    `json:"description" binding:"max=2000"`
}

// TransitionAppointmentRequest represents the request body for a status change.
type TransitionAppointmentRequest struct {
	Status          models.AppointmentStatus `json:"status" binding:"required"`
	RejectionReason string                   `json:"rejectionReason" binding:"max=1000"`
}

// CreateAppointment handles booking a new appointment.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Create(c.Request.Context(), actor, services.CreateAppointmentInput{
		DoctorID:        req.DoctorID,
		ScheduledTime:   req.ScheduledTime,
		DurationMinutes: req.DurationMinutes,
		Description:     req.Description,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Appointment created successfully", appt)
}

// AppointmentQuery holds the list filters besides the time range.
type AppointmentQuery struct {
	Status    models.AppointmentStatus `form:"status"`
	DoctorID  string                   `form:"doctorId" binding:"omitempty,uuid"`
	PatientID string                   `form:"patientId" binding:"omitempty,uuid"`
}

// ListAppointments handles the role scoped, filtered appointment list.
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var query AppointmentQuery
	if !utils.BindQuery(c, &query) {
		return
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	filter := services.AppointmentFilter{
		Status:    query.Status,
		DoctorID:  query.DoctorID,
		PatientID: query.PatientID,
		From:      from,
		To:        to,
	}
	page, err := h.Service.List(c.Request.Context(), actor, filter, pagination.FromContext(c))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", page)
}

// GetAppointmentByID handles fetching a single appointment.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	appt, err := h.Service.Get(c.Request.Context(), actor, id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment fetched successfully", appt)
}

// TransitionAppointment handles accept, reject, complete and cancel requests.
func (h *AppointmentHandler) TransitionAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req TransitionAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Transition(c.Request.Context(), actor, id, services.TransitionInput{
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
	})
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appt)
}

// CancelAppointment handles cancellation by the patient, doctor or an admin.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	appt, err := h.Service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appt)
}
