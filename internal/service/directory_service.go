package service

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"github.com/medtrackhq/medtrack/internal/dto"
	"github.com/meilisearch/meilisearch-go"
)

// directoryCatalog is the static specialty directory shown on the find-a-doctor
// page. These entries are referral contacts, deliberately not tied to the
// registered users table.
var directoryCatalog = map[string]dto.DirectoryDoctor{
	"Cardiologist":       {Name: "Dr. A. Sharma", Specialty: "Cardiologist", Experience: 10, Contact: "9876543210", Email: "asharma@medtrack.com"},
	"Neurologist":        {Name: "Dr. R. Mehta", Specialty: "Neurologist", Experience: 8, Contact: "8765432109", Email: "rmehta@medtrack.com"},
	"Dermatologist":      {Name: "Dr. K. Patel", Specialty: "Dermatologist", Experience: 7, Contact: "9876234560", Email: "kpatel@medtrack.com"},
	"Pediatrician":       {Name: "Dr. S. Verma", Specialty: "Pediatrician", Experience: 12, Contact: "9811122334", Email: "sverma@medtrack.com"},
	"Gynecologist":       {Name: "Dr. R. Joshi", Specialty: "Gynecologist", Experience: 15, Contact: "9822233445", Email: "rjoshi@medtrack.com"},
	"Orthopedic":         {Name: "Dr. M. Singh", Specialty: "Orthopedic", Experience: 9, Contact: "9833344556", Email: "msingh@medtrack.com"},
	"General Physician":  {Name: "Dr. L. Nair", Specialty: "General Physician", Experience: 5, Contact: "9844455667", Email: "lnair@medtrack.com"},
	"ENT Specialist":     {Name: "Dr. V. Reddy", Specialty: "ENT Specialist", Experience: 11, Contact: "9855566778", Email: "vreddy@medtrack.com"},
	"Psychiatrist":       {Name: "Dr. A. Khan", Specialty: "Psychiatrist", Experience: 6, Contact: "9866677889", Email: "akhan@medtrack.com"},
	"Dentist":            {Name: "Dr. P. Desai", Specialty: "Dentist", Experience: 4, Contact: "9877788990", Email: "pdesai@medtrack.com"},
	"Urologist":          {Name: "Dr. R. Kapoor", Specialty: "Urologist", Experience: 10, Contact: "9888899001", Email: "rkapoor@medtrack.com"},
	"Oncologist":         {Name: "Dr. T. Iyer", Specialty: "Oncologist", Experience: 14, Contact: "9899900112", Email: "tiyer@medtrack.com"},
	"Gastroenterologist": {Name: "Dr. D. Mukherjee", Specialty: "Gastroenterologist", Experience: 13, Contact: "9900011223", Email: "dmukherjee@medtrack.com"},
	"Nephrologist":       {Name: "Dr. S. Rao", Specialty: "Nephrologist", Experience: 11, Contact: "9911122334", Email: "srao@medtrack.com"},
	"Rheumatologist":     {Name: "Dr. B. Das", Specialty: "Rheumatologist", Experience: 9, Contact: "9922233445", Email: "bdas@medtrack.com"},
}

const directoryIndex = "directory_doctors"

type DirectoryService interface {
	Specialties() []string
	FindBySpecialty(specialty string) (*dto.DirectoryDoctor, bool)
	// Search runs a free-text query over the catalog. Requires Meilisearch;
	// callers get ok=false when no search backend is configured.
	Search(query string) ([]dto.DirectoryDoctor, bool, error)
}

type directoryService struct {
	search meilisearch.ServiceManager
}

func NewDirectoryService(search meilisearch.ServiceManager) DirectoryService {
	s := &directoryService{search: search}
	if search != nil {
		s.indexCatalog()
	}
	return s
}

type directoryDoc struct {
	ID string `json:"id"`
	dto.DirectoryDoctor
}

func (s *directoryService) indexCatalog() {
	docs := make([]directoryDoc, 0, len(directoryCatalog))
	for i, specialty := range s.Specialties() {
		docs = append(docs, directoryDoc{
			ID:              fmt.Sprintf("doc-%d", i),
			DirectoryDoctor: directoryCatalog[specialty],
		})
	}

	if _, err := s.search.Index(directoryIndex).AddDocuments(docs, strPtr("id")); err != nil {
		log.Printf("failed to index doctor directory: %v", err)
	}
}

func (s *directoryService) Specialties() []string {
	specialties := make([]string, 0, len(directoryCatalog))
	for specialty := range directoryCatalog {
		specialties = append(specialties, specialty)
	}
	sort.Strings(specialties)
	return specialties
}

func (s *directoryService) FindBySpecialty(specialty string) (*dto.DirectoryDoctor, bool) {
	doctor, ok := directoryCatalog[specialty]
	if !ok {
		return nil, false
	}
	return &doctor, true
}

func (s *directoryService) Search(query string) ([]dto.DirectoryDoctor, bool, error) {
	if s.search == nil {
		return nil, false, nil
	}

	resp, err := s.search.Index(directoryIndex).Search(query, &meilisearch.SearchRequest{Limit: 10})
	if err != nil {
		return nil, true, err
	}

	doctors := make([]dto.DirectoryDoctor, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc directoryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		doctors = append(doctors, doc.DirectoryDoctor)
	}

	return doctors, true, nil
}

func strPtr(s string) *string {
	return &s
}
