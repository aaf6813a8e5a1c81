package handlers

import (
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// MedicalRecordHandler handles the record and prescriptions of an appointment.
type MedicalRecordHandler struct {
	Service *services.RecordService
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(service *services.RecordService) *MedicalRecordHandler {
	return &MedicalRecordHandler{Service: service}
}

// RecordFieldsRequest holds the record fields a doctor may change.
type RecordFieldsRequest struct {
	ChiefComplaint *string                     `json:"chiefComplaint"`
	PresentIllness *string                     `json:"presentIllness"`
	PastHistory    *string                     `json:"pastHistory"`
	PhysicalExam   *string                     `json:"physicalExam"`
	Diagnosis      *string                     `json:"diagnosis"`
	TreatmentPlan  *string                     `json:"treatmentPlan"`
	Note           *string                     `json:"note"`
	Status         *models.MedicalRecordStatus `json:"status"`
}

// PrescriptionRequest is one prescription entry. Omit id to create a new one.
type PrescriptionRequest struct {
	ID          string                     `json:"id" binding:"omitempty,uuid"`
	Type        *models.PrescriptionType   `json:"type"`
	Description *string                    `json:"description"`
	Frequency   *string                    `json:"frequency" binding:"omitempty,max=50"`
	Dosage      *string                    `json:"dosage" binding:"omitempty,max=50"`
	Duration    *int                       `json:"duration" binding:"omitempty,min=0"`
	Note        *string                    `json:"note"`
	Status      *models.PrescriptionStatus `json:"status"`
}

// UpdateRecordRequest represents the request body for updating a record.
type UpdateRecordRequest struct {
	Record        RecordFieldsRequest   `json:"record"`
	Prescriptions []PrescriptionRequest `json:"prescriptions" binding:"dive"`
}

func (r UpdateRecordRequest) toInput() services.UpdateRecordInput {
	in := services.UpdateRecordInput{
		Record: services.RecordFields{
			ChiefComplaint: r.Record.ChiefComplaint,
			PresentIllness: r.Record.PresentIllness,
			PastHistory:    r.Record.PastHistory,
			PhysicalExam:   r.Record.PhysicalExam,
			Diagnosis:      r.Record.Diagnosis,
			TreatmentPlan:  r.Record.TreatmentPlan,
			Note:           r.Record.Note,
			Status:         r.Record.Status,
		},
	}
	for _, p := range r.Prescriptions {
		in.Prescriptions = append(in.Prescriptions, services.PrescriptionFields{
			ID:          p.ID,
			Type:        p.Type,
			Description: p.Description,
			Frequency:   p.Frequency,
			Dosage:      p.Dosage,
			Duration:    p.Duration,
			Note:        p.Note,
			Status:      p.Status,
		})
	}
	return in
}

// GetRecord handles fetching the record of an appointment.
func (h *MedicalRecordHandler) GetRecord(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.Service.GetRecord(c.Request.Context(), actor, id)
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Medical record fetched successfully", detail)
}

// UpdateRecord handles the record merge and prescription upserts.
func (h *MedicalRecordHandler) UpdateRecord(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	detail, err := h.Service.UpdateRecord(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Medical record updated successfully", detail)
}

// DeletePrescription handles removing one prescription of the record.
func (h *MedicalRecordHandler) DeletePrescription(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	prescriptionID, ok := pathID(c, "prescriptionId")
	if !ok {
		return
	}

	if err := h.Service.DeletePrescription(c.Request.Context(), actor, id, prescriptionID); err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Prescription deleted successfully", nil)
}
