package models

// MedicationCategory classifies catalogue entries
type MedicationCategory string

const (
	CategoryUnknown      MedicationCategory = "unknown"
	CategoryPrescription MedicationCategory = "prescription"
	CategoryOTC          MedicationCategory = "otc"
	CategoryTraditional  MedicationCategory = "traditional"
	CategoryHealthCare   MedicationCategory = "healthcare"
)

// MedicationStatus says whether a medication can be dispensed
type MedicationStatus string

const (
	MedicationDisabled MedicationStatus = "disabled"
	MedicationEnabled  MedicationStatus = "enabled"
)

// Medication is an inventory entry. Price is kept in minor currency units.
type Medication struct {
	BaseModel
	Name        string             `gorm:"size:100;not null;index" json:"name"`
	Description string             `gorm:"type:text" json:"description"`
	Price       int                `gorm:"default:0" json:"price"`
	Amount      int                `gorm:"default:0" json:"amount"`
	Category    MedicationCategory `gorm:"size:20;default:'unknown'" json:"category"`
	Status      MedicationStatus   `gorm:"size:20;default:'disabled'" json:"status"`
}
