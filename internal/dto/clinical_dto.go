package dto

import "github.com/medtrackhq/medtrack/internal/model"

type AddMedicineRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Dosage string `json:"dosage" binding:"required,max=100"`
	Time   string `json:"time" binding:"required,max=100"`
}

type AddDiagnosisRequest struct {
	DiagnosisText string `json:"diagnosis_text" binding:"required"`
}

// PatientHistoryResponse carries the two collections shown on the patient
// history page. Both are present (possibly empty), never null.
type PatientHistoryResponse struct {
	PatientUsername string            `json:"patient_username"`
	Medicines       []model.Medicine  `json:"medicines"`
	Diagnoses       []model.Diagnosis `json:"diagnoses"`
}
