package handlers

import (
	"clinic-appointments-server/internal/models"
	"clinic-appointments-server/internal/pagination"
	"clinic-appointments-server/internal/services"
	"clinic-appointments-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// MedicationHandler handles the medication inventory.
type MedicationHandler struct {
	Service *services.MedicationService
}

// NewMedicationHandler creates a new MedicationHandler.
func NewMedicationHandler(service *services.MedicationService) *MedicationHandler {
	return &MedicationHandler{Service: service}
}

// MedicationRequest is the body of create and update. Omitted fields are unchanged.
type MedicationRequest struct {
	Name        *string                    `json:"name" binding:"omitempty,max=100"`
	Description *string                    `json:"description"`
	Price       *int                       `json:"price" binding:"omitempty,min=0"`
	Amount      *int                       `json:"amount" binding:"omitempty,min=0"`
	Category    *models.MedicationCategory `json:"category"`
	Status      *models.MedicationStatus   `json:"status"`
}

func (r MedicationRequest) toInput() services.MedicationInput {
	return services.MedicationInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Amount:      r.Amount,
		Category:    r.Category,
		Status:      r.Status,
	}
}

// MedicationQuery holds the medication list filters.
type MedicationQuery struct {
	SearchValue string                    `form:"searchValue" binding:"max=100"`
	Category    models.MedicationCategory `form:"category" binding:"omitempty,oneof=unknown prescription otc traditional healthcare"`
	Status      models.MedicationStatus   `form:"status" binding:"omitempty,oneof=enabled disabled"`
	MinPrice    *int                      `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice    *int                      `form:"maxPrice" binding:"omitempty,min=0"`
	MinStock    *int                      `form:"minStock" binding:"omitempty,min=0"`
	MaxStock    *int                      `form:"maxStock" binding:"omitempty,min=0"`
}

// ListMedications handles the filtered medication list.
func (h *MedicationHandler) ListMedications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var query MedicationQuery
	if !utils.BindQuery(c, &query) {
		return
	}

	filter := services.MedicationFilter{
		Search:   query.SearchValue,
		Category: query.Category,
		Status:   query.Status,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		MinStock: query.MinStock,
		MaxStock: query.MaxStock,
	}

	page, err := h.Service.List(c.Request.Context(), actor, filter, pagination.FromContext(c))
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Medications fetched successfully", page)
}

// CreateMedication handles adding a medication.
func (h *MedicationHandler) CreateMedication(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	var req MedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	med, err := h.Service.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Created(c, "Medication created successfully", med)
}

// UpdateMedication handles a partial medication update.
func (h *MedicationHandler) UpdateMedication(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req MedicationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	med, err := h.Service.Update(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		utils.ServiceError(c, err)
		return
	}

	utils.Success(c, "Medication updated successfully", med)
}

// DeleteMedication handles removing a medication.
func (h *MedicationHandler) DeleteMedication(c *gin.Context) {
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

	utils.Success(c, "Medication deleted successfully", nil)
}
