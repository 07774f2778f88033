package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/exam-pulse/exampulse-lms/internal/report"
)

// ExamReportHandler builds an analytics report across every attempt of
// one exam. Teacher/admin only; route guard handles the permission.
func ExamReportHandler(eng *report.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		rep, err := eng.BuildReport(r.Context(), report.Scope{ExamID: examID})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	}
}

// UserReportHandler builds a report over one user's attempts, optionally
// narrowed to a single exam via ?exam_id=. Guarded by RequireOwnerOr so
// students can only fetch their own.
func UserReportHandler(eng *report.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		rep, err := eng.BuildReport(r.Context(), report.Scope{
			UserID: userID,
			ExamID: r.URL.Query().Get("exam_id"),
		})
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rep)
	}
}
