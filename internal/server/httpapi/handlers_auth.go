package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cohorttools/cohort-api/internal/common"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSignup registers a new user.
//
// POST /auth/signup
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		errorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, err := s.auth.Signup(r.Context(), clientKey(r), req.Username, req.Email, req.Password)
	if err != nil {
		var validationErrs common.ValidationErrors
		switch {
		case errors.Is(err, common.ErrorRateLimited):
			errorMessage(w, http.StatusTooManyRequests, "Too many signup attempts, please try again later")
		case errors.As(err, &validationErrs):
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": validationErrs})
		case errors.Is(err, common.ErrorAlreadyExists):
			errorMessage(w, http.StatusBadRequest, "Email already in use")
		default:
			errorMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"newUser": user,
	})
}

// handleLogin authenticates a user and issues a bearer token. A missing
// account and a wrong password produce byte-identical responses.
//
// POST /auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		errorMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, userID, err := s.auth.Login(r.Context(), clientKey(r), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorRateLimited):
			errorMessage(w, http.StatusTooManyRequests, "Too many login attempts, please try again later")
		case errors.Is(err, common.ErrorUnauthorized):
			errorMessage(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			errorMessage(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Congrats u're logged in",
		"authToken": token,
		"userId":    userID,
	})
}

// handleVerify returns the authenticated user; the authenticate middleware
// has already checked the token and re-fetched the account.
//
// GET /auth/verify
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           "Token is valid",
		"currentLoggedUser": currentUser(r.Context()),
	})
}

// handleGetUser returns a user profile by id.
//
// GET /api/user/{id}
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			errorMessage(w, http.StatusNotFound, "User not found")
			return
		}
		errorMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User found",
		"user":    user,
	})
}
