package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/exam-pulse/exampulse-lms/internal/exam"
	"github.com/exam-pulse/exampulse-lms/internal/rbac"
)

func CreateAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID    string `json:"exam_id"`
			SectionID string `json:"section_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.ExamID == "" || req.SectionID == "" {
			http.Error(w, "exam_id and section_id required", 400)
			return
		}
		userID := rbac.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		a, err := store.NewAttempt(req.ExamID, req.SectionID, userID)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

func SaveResponsesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		var inputs []exam.ResponseInput
		if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		a, err := store.SaveResponses(id, inputs)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

func SubmitAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, err := store.Submit(id)
		if err != nil {
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, err := store.GetAttempt(id)
		if err != nil {
			http.Error(w, err.Error(), 404)
			return
		}
		// students may only see their own attempts
		role := rbac.RoleFromContext(r.Context())
		if role != "admin" && role != "teacher" && a.UserID != rbac.SubjectFromContext(r.Context()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(a)
	}
}

// GET /attempts?exam_id=...&section_id=...&user_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all are scoped to their own attempts.
func ListAttemptsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())
		if role == "" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if role != "admin" && role != "teacher" {
			userID = sub
		}

		list, err := store.ListAttempts(r.Context(), exam.AttemptListOpts{
			ExamID:    strings.TrimSpace(r.URL.Query().Get("exam_id")),
			SectionID: strings.TrimSpace(r.URL.Query().Get("section_id")),
			UserID:    userID,
			Status:    strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:     parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:    parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
