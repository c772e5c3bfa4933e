package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexus-crm/nexus/internal/analytics"
	"github.com/nexus-crm/nexus/internal/crm"
	"github.com/nexus-crm/nexus/internal/scheduler"
)

func setupTestAPI(t *testing.T) (*chiTestServer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := crm.NewStore(db)
	sched := scheduler.New(store)
	agg := analytics.New(store)
	router := SetupRoutes(NewHandlers(store, sched, agg))
	return &chiTestServer{router: router}, mock
}

type chiTestServer struct {
	router http.Handler
}

func (s *chiTestServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	srv, mock := setupTestAPI(t)
	mock.ExpectPing()

	rec := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestHealthCheckDegraded(t *testing.T) {
	srv, mock := setupTestAPI(t)
	mock.ExpectPing().WillReturnError(sql.ErrConnDone)

	rec := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCreateContactValidation(t *testing.T) {
	srv, _ := setupTestAPI(t)

	rec := srv.do(t, http.MethodPost, "/api/contacts", map[string]interface{}{
		"name": "No User",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "user_id")

	rec = srv.do(t, http.MethodPost, "/api/contacts", map[string]interface{}{
		"user_id": uuid.New(),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "name")
}

func TestCreateContact(t *testing.T) {
	srv, mock := setupTestAPI(t)
	mock.ExpectExec("INSERT INTO crm_contacts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := srv.do(t, http.MethodPost, "/api/contacts", map[string]interface{}{
		"user_id": uuid.New(),
		"name":    "Ada Lovelace",
		"company": "Analytical Engines",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Ada Lovelace", body["name"])
	assert.Equal(t, crm.StrengthWeak, body["relationship_strength"])
}

func TestGetContactNotFound(t *testing.T) {
	srv, mock := setupTestAPI(t)
	mock.ExpectQuery("SELECT id, user_id, name").
		WillReturnError(sql.ErrNoRows)

	rec := srv.do(t, http.MethodGet, "/api/contacts/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetContactBadID(t *testing.T) {
	srv, _ := setupTestAPI(t)

	rec := srv.do(t, http.MethodGet, "/api/contacts/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func contactRow(id, userID uuid.UUID, lastContacted *time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "name", "email", "phone", "company",
		"title", "relationship_strength", "last_contacted", "interaction_count", "tags",
		"created_at", "updated_at"}).
		AddRow(id, userID, "Ada Lovelace", "ada@example.com", "", "Analytical Engines",
			"", crm.StrengthMedium, lastContacted, 7, []byte(`{}`), time.Now().AddDate(0, -6, 0), time.Now())
}

func emptyInteractions() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "contact_id", "type", "outcome",
		"notes", "follow_up_required", "follow_up_completed_at", "occurred_at", "created_at"})
}

func TestContactScore(t *testing.T) {
	srv, mock := setupTestAPI(t)
	contactID := uuid.New()
	lastContacted := time.Now().AddDate(0, 0, -45)

	mock.ExpectQuery("SELECT id, user_id, name").
		WillReturnRows(contactRow(contactID, uuid.New(), &lastContacted))
	mock.ExpectQuery("SELECT id, user_id, contact_id").
		WillReturnRows(emptyInteractions())

	rec := srv.do(t, http.MethodGet, fmt.Sprintf("/api/contacts/%s/score", contactID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(45), body["days_since_contact"])
	assert.Equal(t, crm.StrengthWeak, body["computed_strength"])
	assert.Equal(t, crm.StrengthMedium, body["current_strength"])
}

func TestScheduleReplyNotFound(t *testing.T) {
	srv, mock := setupTestAPI(t)
	mock.ExpectQuery("SELECT id, user_id, contact_id").
		WillReturnError(sql.ErrNoRows)

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/messages/%s/schedule-reply", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func messageRow(id uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "contact_id", "content", "type",
		"status", "reply_content", "replied_at", "reply_due_at", "created_at"}).
		AddRow(id, uuid.New(), uuid.New(), "Hey, long time!", crm.ChannelEmail,
			status, "", nil, nil, time.Now())
}

func TestScheduleReplyConflictWhenSettled(t *testing.T) {
	srv, mock := setupTestAPI(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT id, user_id, contact_id").
		WillReturnRows(messageRow(id, crm.MessageResponded))

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/messages/%s/schedule-reply", id), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCancelReplyIsAlwaysNoOp(t *testing.T) {
	srv, mock := setupTestAPI(t)
	id := uuid.New()

	// Nothing scheduled and nothing pending: clearing affects zero rows.
	mock.ExpectExec("UPDATE crm_messages SET reply_due_at").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/messages/%s/cancel-reply", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decodeBody(t, rec)["status"])
}

func TestMessageAnalytics(t *testing.T) {
	srv, mock := setupTestAPI(t)
	userID := uuid.New()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"total", "pending", "responded", "no_response", "avg"}).
			AddRow(10, 2, 7, 1, 120.0))

	rec := srv.do(t, http.MethodGet, fmt.Sprintf("/api/users/%s/message-analytics", userID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(10), body["total"])
	assert.Equal(t, float64(70), body["response_rate"])
}

func TestGenerateDailyAnalyticsBadDate(t *testing.T) {
	srv, _ := setupTestAPI(t)

	rec := srv.do(t, http.MethodPost,
		fmt.Sprintf("/api/users/%s/analytics/daily?date=tomorrow", uuid.New()), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDailyAnalyticsMissing(t *testing.T) {
	srv, mock := setupTestAPI(t)
	mock.ExpectQuery("SELECT id, user_id, snapshot_date").
		WillReturnError(sql.ErrNoRows)

	rec := srv.do(t, http.MethodGet,
		fmt.Sprintf("/api/users/%s/analytics/daily?date=2026-03-15", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
