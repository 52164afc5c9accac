package dto

// DirectoryDoctor is one entry of the static find-a-doctor catalog.
type DirectoryDoctor struct {
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Experience int    `json:"experience"`
	Contact    string `json:"contact"`
	Email      string `json:"email"`
}
