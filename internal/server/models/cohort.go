package models

// Cohort describes one bootcamp cohort.
type Cohort struct {
	ID             string `json:"id"`
	CohortSlug     string `json:"cohortSlug"`
	CohortName     string `json:"cohortName"`
	Program        string `json:"program"`
	Campus         string `json:"campus"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	InProgress     bool   `json:"inProgress"`
	ProgramManager string `json:"programManager"`
	LeadTeacher    string `json:"leadTeacher"`
	TotalHours     int    `json:"totalHours"`
}
