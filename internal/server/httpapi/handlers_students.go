package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/server/models"
)

// GET /api/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	list, err := s.students.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching students"})
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GET /api/students/cohort/{cohortId}
func (s *Server) handleListStudentsByCohort(w http.ResponseWriter, r *http.Request) {
	list, err := s.students.ListByCohort(r.Context(), chi.URLParam(r, "cohortId"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching students"})
		return
	}

	writeJSON(w, http.StatusOK, list)
}

// GET /api/students/{studentId}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	student, err := s.students.Get(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Student not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error fetching student"})
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// POST /api/students
func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var student models.Student
	if err := decodeJSON(r, &student); err != nil {
		errorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	created, err := s.students.Create(r.Context(), &student)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error creating student"})
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// PUT /api/students/{studentId}
func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	var student models.Student
	if err := decodeJSON(r, &student); err != nil {
		errorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	student.ID = chi.URLParam(r, "studentId")

	updated, err := s.students.Update(r.Context(), &student)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Student not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error updating student"})
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// DELETE /api/students/{studentId}
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	err := s.students.Delete(r.Context(), chi.URLParam(r, "studentId"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Student not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Error deleting student"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Student deleted successfully"})
}
