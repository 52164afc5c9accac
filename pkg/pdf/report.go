package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// MedicineLine is one row of the medicine schedule table.
type MedicineLine struct {
	Name   string
	Dosage string
	Time   string
}

// DiagnosisLine is one recorded diagnosis entry.
type DiagnosisLine struct {
	Doctor string
	Text   string
}

// PatientReport is everything that goes into the rendered history document.
type PatientReport struct {
	PatientUsername string
	Medicines       []MedicineLine
	Diagnoses       []DiagnosisLine
	GeneratedAt     time.Time
}

// Render produces the patient history report as PDF bytes.
func Render(report PatientReport) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetTitle(fmt.Sprintf("Medical history for %s", report.PatientUsername), false)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 12, "MedTrack Patient Report", "", 1, "C", false, 0, "")

	doc.SetFont("Helvetica", "", 11)
	doc.CellFormat(0, 8, fmt.Sprintf("Patient: %s", report.PatientUsername), "", 1, "L", false, 0, "")
	generated := report.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	doc.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, "Medicines", "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	if len(report.Medicines) == 0 {
		doc.CellFormat(0, 8, "No medicines on record.", "", 1, "L", false, 0, "")
	} else {
		doc.SetFont("Helvetica", "B", 11)
		doc.CellFormat(70, 8, "Name", "1", 0, "L", false, 0, "")
		doc.CellFormat(60, 8, "Dosage", "1", 0, "L", false, 0, "")
		doc.CellFormat(50, 8, "Time", "1", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		for _, med := range report.Medicines {
			doc.CellFormat(70, 8, med.Name, "1", 0, "L", false, 0, "")
			doc.CellFormat(60, 8, med.Dosage, "1", 0, "L", false, 0, "")
			doc.CellFormat(50, 8, med.Time, "1", 1, "L", false, 0, "")
		}
	}
	doc.Ln(6)

	doc.SetFont("Helvetica", "B", 14)
	doc.CellFormat(0, 10, "Diagnoses", "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	if len(report.Diagnoses) == 0 {
		doc.CellFormat(0, 8, "No diagnoses on record.", "", 1, "L", false, 0, "")
	} else {
		for _, diag := range report.Diagnoses {
			doc.SetFont("Helvetica", "B", 11)
			doc.CellFormat(0, 8, fmt.Sprintf("Dr. %s", diag.Doctor), "", 1, "L", false, 0, "")
			doc.SetFont("Helvetica", "", 11)
			doc.MultiCell(0, 6, diag.Text, "", "L", false)
			doc.Ln(2)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
