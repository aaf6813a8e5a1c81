package models

// MedicalRecordStatus represents the editing state of a medical record
type MedicalRecordStatus string

const (
	RecordStatusDraft MedicalRecordStatus = "draft"
	RecordStatusFinal MedicalRecordStatus = "final"
)

// MedicalRecord is the clinical note kept for one accepted appointment.
type MedicalRecord struct {
	BaseModel
	AppointmentID  string              `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	PatientID      string              `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID       string              `gorm:"size:36;index;not null" json:"doctorId"`
	ChiefComplaint string              `gorm:"type:text" json:"chiefComplaint"`
	PresentIllness string              `gorm:"type:text" json:"presentIllness"`
	PastHistory    string              `gorm:"type:text" json:"pastHistory"`
	PhysicalExam   string              `gorm:"type:text" json:"physicalExam"`
	Diagnosis      string              `gorm:"type:text" json:"diagnosis"`
	TreatmentPlan  string              `gorm:"type:text" json:"treatmentPlan"`
	Note           string              `gorm:"type:text" json:"note"`
	Status         MedicalRecordStatus `gorm:"size:20;default:'draft'" json:"status"`

	// Relations
	Appointment   Appointment    `gorm:"foreignKey:AppointmentID" json:"-"`
	Patient       User           `gorm:"foreignKey:PatientID" json:"-"`
	Doctor        User           `gorm:"foreignKey:DoctorID" json:"-"`
	Prescriptions []Prescription `gorm:"foreignKey:RecordID" json:"-"`
}

// PrescriptionType distinguishes medication orders from examinations
type PrescriptionType string

const (
	PrescriptionMedication  PrescriptionType = "medication"
	PrescriptionExamination PrescriptionType = "examination"
	PrescriptionOther       PrescriptionType = "other"
)

// PrescriptionStatus tracks execution of an order
type PrescriptionStatus string

const (
	PrescriptionPending    PrescriptionStatus = "pending"
	PrescriptionProcessing PrescriptionStatus = "processing"
	PrescriptionCompleted  PrescriptionStatus = "completed"
	PrescriptionCancelled  PrescriptionStatus = "cancelled"
)

// Prescription is a single order written inside a medical record.
type Prescription struct {
	BaseModel
	RecordID    string             `gorm:"size:36;index;not null" json:"recordId"`
	PatientID   string             `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID    string             `gorm:"size:36;index;not null" json:"doctorId"`
	Type        PrescriptionType   `gorm:"size:20;default:'medication'" json:"type"`
	Description string             `gorm:"type:text;not null" json:"description"`
	Frequency   string             `gorm:"size:50" json:"frequency"`
	Dosage      string             `gorm:"size:50" json:"dosage"`
	Duration    *int               `json:"duration,omitempty"` // days
	Note        string             `gorm:"type:text" json:"note"`
	Status      PrescriptionStatus `gorm:"size:20;default:'pending'" json:"status"`

	// Relations
	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}
