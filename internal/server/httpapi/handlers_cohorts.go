package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/server/models"
	"github.com/cohorttools/cohort-api/internal/server/repositories/cohorts"
)

// GET /api/cohorts
func (s *Server) handleListCohorts(w http.ResponseWriter, r *http.Request) {
	filter := cohorts.Filter{
		Campus:  r.URL.Query().Get("campus"),
		Program: r.URL.Query().Get("program"),
	}

	list, err := s.cohorts.List(r.Context(), filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching cohorts"})
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GET /api/cohorts/{cohortId}
func (s *Server) handleGetCohort(w http.ResponseWriter, r *http.Request) {
	cohort, err := s.cohorts.Get(r.Context(), chi.URLParam(r, "cohortId"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cohort not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching cohort"})
		return
	}

	writeJSON(w, http.StatusOK, cohort)
}

// POST /api/cohorts
func (s *Server) handleCreateCohort(w http.ResponseWriter, r *http.Request) {
	var cohort models.Cohort
	if err := decodeJSON(r, &cohort); err != nil {
		errorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	created, err := s.cohorts.Create(r.Context(), &cohort)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error creating cohort"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// PUT /api/cohorts/{cohortId}
func (s *Server) handleUpdateCohort(w http.ResponseWriter, r *http.Request) {
	var cohort models.Cohort
	if err := decodeJSON(r, &cohort); err != nil {
		errorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	cohort.ID = chi.URLParam(r, "cohortId")

	updated, err := s.cohorts.Update(r.Context(), &cohort)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cohort not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error updating cohort"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/cohorts/{cohortId}
func (s *Server) handleDeleteCohort(w http.ResponseWriter, r *http.Request) {
	err := s.cohorts.Delete(r.Context(), chi.URLParam(r, "cohortId"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Cohort not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error deleting cohort"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Cohort deleted successfully"})
}
