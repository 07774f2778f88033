package http

import (
	"context"
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	authmw "github.com/exam-pulse/exampulse-lms/internal/auth/middleware"
	"github.com/exam-pulse/exampulse-lms/internal/db"
)

func seedUser(t *testing.T, dbh *sql.DB, id, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dbh.Exec(
		`INSERT INTO users (id, username, password_hash, role, created_at) VALUES ($1,$2,$3,'student',$4)`,
		id, id, string(hash), time.Now().Unix()); err != nil {
		t.Fatal(err)
	}
}

func TestChangePasswordHandler(t *testing.T) {
	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:pw_test?mode=memory&cache=shared")
	if err != nil {
		t.Fatal(err)
	}
	defer dbh.Close()
	seedUser(t, dbh, "alice", "old-pass")

	h := ChangePasswordHandler(dbh)

	do := func(subject, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/users/change-password", strings.NewReader(body))
		if subject != "" {
			req = req.WithContext(authmw.WithSubject(req.Context(), subject))
		}
		w := httptest.NewRecorder()
		h(w, req)
		return w
	}

	if w := do("", `{}`); w.Code != 401 {
		t.Fatalf("no subject: code = %d, want 401", w.Code)
	}
	if w := do("alice", `{"old_password":"wrong","new_password":"next"}`); w.Code != 403 {
		t.Fatalf("wrong old password: code = %d, want 403", w.Code)
	}
	if w := do("alice", `{"old_password":"old-pass","new_password":""}`); w.Code != 400 {
		t.Fatalf("empty new password: code = %d, want 400", w.Code)
	}
	if w := do("alice", `{"old_password":"old-pass","new_password":"new-pass"}`); w.Code != 204 {
		t.Fatalf("rotate: code = %d, want 204", w.Code)
	}

	var hash string
	if err := dbh.QueryRow(`SELECT password_hash FROM users WHERE id='alice'`).Scan(&hash); err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-pass")) != nil {
		t.Fatal("stored hash does not match the new password")
	}
}
