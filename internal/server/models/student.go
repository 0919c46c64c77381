package models

// Student describes one enrolled student. CohortID references the student's
// cohort; list and get responses embed the resolved Cohort when present.
type Student struct {
	ID          string   `json:"id"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	LinkedinURL string   `json:"linkedinUrl"`
	Languages   []string `json:"languages"`
	Program     string   `json:"program"`
	Background  string   `json:"background"`
	Image       string   `json:"image"`
	CohortID    string   `json:"cohortId,omitempty"`
	Cohort      *Cohort  `json:"cohort,omitempty"`
	Projects    []string `json:"projects"`
}
