package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/timecard-backend-go/internal/domain/timecard"
	"github.com/cmlabs-hris/timecard-backend-go/internal/pkg/jwt"
)

const (
	handlerTestAccessExp = "1h"
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestTenant    = "01890a5d-ac96-774b-bcce-b302099a8057"
	handlerTestUser      = "01890a5d-ac96-774b-bcce-b302099a8001"
)

// stubTimecardService answers the calls a test sets up and panics on the rest.
type stubTimecardService struct {
	timecard.TimecardService

	checkIn     func(req timecard.PunchRequest) (timecard.EntryResponse, error)
	getEntry    func(tenantID, id string) (timecard.EntryResponse, error)
	reject      func(req timecard.RejectRequest) (timecard.EntryResponse, error)
	bulkApprove func(req timecard.BulkApproveRequest) (timecard.BulkApproveResponse, error)
	hourBank    func(req timecard.HourBankRequest) (timecard.HourBankResponse, error)
}

func (s *stubTimecardService) CheckIn(ctx context.Context, req timecard.PunchRequest) (timecard.EntryResponse, error) {
	return s.checkIn(req)
}

func (s *stubTimecardService) GetEntry(ctx context.Context, tenantID, id string) (timecard.EntryResponse, error) {
	return s.getEntry(tenantID, id)
}

func (s *stubTimecardService) Reject(ctx context.Context, req timecard.RejectRequest) (timecard.EntryResponse, error) {
	return s.reject(req)
}

func (s *stubTimecardService) BulkApprove(ctx context.Context, req timecard.BulkApproveRequest) (timecard.BulkApproveResponse, error) {
	return s.bulkApprove(req)
}

func (s *stubTimecardService) GetHourBank(ctx context.Context, req timecard.HourBankRequest) (timecard.HourBankResponse, error) {
	return s.hourBank(req)
}

type stubReportService struct {
	build func(req report.ReportRequest) (report.Report, error)
}

func (s *stubReportService) BuildReport(ctx context.Context, req report.ReportRequest) (report.Report, error) {
	return s.build(req)
}

type handlerTestEnv struct {
	router   http.Handler
	jwt      jwt.Service
	timecard *stubTimecardService
	report   *stubReportService
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()
	jwtSvc, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp)
	require.NoError(t, err)

	env := &handlerTestEnv{
		jwt:      jwtSvc,
		timecard: &stubTimecardService{},
		report:   &stubReportService{},
	}
	env.router = NewRouter(jwtSvc, NewTimecardHandler(env.timecard), NewReportHandler(env.report), RouterOptions{})
	return env
}

func (e *handlerTestEnv) token(t *testing.T) string {
	t.Helper()
	token, _, err := e.jwt.GenerateAccessToken(handlerTestUser, handlerTestTenant)
	require.NoError(t, err)
	return token
}

func (e *handlerTestEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func errorCode(resp map[string]interface{}) string {
	detail, _ := resp["error"].(map[string]interface{})
	code, _ := detail["code"].(string)
	return code
}

func TestTimecardHandler_RequiresToken(t *testing.T) {
	env := newHandlerTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/api/v1/timecards/check-in", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimecardHandler_RejectsTokenWithoutTenant(t *testing.T) {
	env := newHandlerTestEnv(t)
	_, token, err := env.jwt.JWTAuth().Encode(map[string]interface{}{
		jwt.ClaimUserID: handlerTestUser,
		jwt.ClaimType:   jwt.TokenTypeAccess,
		"exp":           time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	w, resp := env.do(t, http.MethodPost, "/api/v1/timecards/check-in", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(resp))
}

func TestTimecardHandler_RejectsNonAccessToken(t *testing.T) {
	env := newHandlerTestEnv(t)
	_, token, err := env.jwt.JWTAuth().Encode(map[string]interface{}{
		jwt.ClaimUserID:   handlerTestUser,
		jwt.ClaimTenantID: handlerTestTenant,
		jwt.ClaimType:     "refresh",
		"exp":             time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	w, _ := env.do(t, http.MethodPost, "/api/v1/timecards/check-in", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTimecardHandler_CheckInUsesIdentityFromToken(t *testing.T) {
	env := newHandlerTestEnv(t)
	var got timecard.PunchRequest
	env.timecard.checkIn = func(req timecard.PunchRequest) (timecard.EntryResponse, error) {
		got = req
		return timecard.EntryResponse{ID: "entry-1", TenantID: req.TenantID, UserID: req.UserID, Status: "pending"}, nil
	}

	notes := "remote"
	w, resp := env.do(t, http.MethodPost, "/api/v1/timecards/check-in", env.token(t), map[string]interface{}{
		"notes":     notes,
		"tenant_id": "01890a5d-ac96-774b-bcce-b302099a8058",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, handlerTestTenant, got.TenantID, "tenant comes from the token, never the body")
	assert.Equal(t, handlerTestUser, got.UserID)
	require.NotNil(t, got.Notes)
	assert.Equal(t, notes, *got.Notes)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "entry-1", data["id"])
}

func TestTimecardHandler_CheckInWithoutBody(t *testing.T) {
	env := newHandlerTestEnv(t)
	env.timecard.checkIn = func(req timecard.PunchRequest) (timecard.EntryResponse, error) {
		return timecard.EntryResponse{ID: "entry-1"}, nil
	}

	w, _ := env.do(t, http.MethodPost, "/api/v1/timecards/check-in", env.token(t), nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTimecardHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{timecard.ErrDuplicateOpenEntry, http.StatusConflict, "DUPLICATE_OPEN_ENTRY"},
		{timecard.ErrNoActiveEntry, http.StatusBadRequest, "NO_ACTIVE_ENTRY"},
		{timecard.ErrInvalidSequence, http.StatusBadRequest, "INVALID_SEQUENCE"},
		{timecard.ErrConcurrentUpdate, http.StatusConflict, "CONCURRENT_UPDATE"},
		{fmt.Errorf("failed to create time entry: %w", context.DeadlineExceeded), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			env := newHandlerTestEnv(t)
			env.timecard.checkIn = func(req timecard.PunchRequest) (timecard.EntryResponse, error) {
				return timecard.EntryResponse{}, tc.err
			}

			w, resp := env.do(t, http.MethodPost, "/api/v1/timecards/check-in", env.token(t), nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, errorCode(resp))
		})
	}
}

func TestTimecardHandler_GetForeignEntryIsNotFound(t *testing.T) {
	env := newHandlerTestEnv(t)
	env.timecard.getEntry = func(tenantID, id string) (timecard.EntryResponse, error) {
		assert.Equal(t, handlerTestTenant, tenantID)
		assert.Equal(t, "entry-9", id)
		return timecard.EntryResponse{}, timecard.ErrTenantMismatch
	}

	w, resp := env.do(t, http.MethodGet, "/api/v1/timecards/entry-9", env.token(t), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(resp))
}

func TestTimecardHandler_RejectMapsApprovalErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{timecard.ErrMissingReason, http.StatusUnprocessableEntity},
		{timecard.ErrNotPending, http.StatusConflict},
		{timecard.ErrUnauthorized, http.StatusForbidden},
		{timecard.ErrSettingsMissing, http.StatusConflict},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			env := newHandlerTestEnv(t)
			env.timecard.reject = func(req timecard.RejectRequest) (timecard.EntryResponse, error) {
				assert.Equal(t, "entry-1", req.EntryID)
				assert.Equal(t, timecard.Actor{ID: handlerTestUser, TenantID: handlerTestTenant}, req.Actor)
				return timecard.EntryResponse{}, tc.err
			}

			w, _ := env.do(t, http.MethodPost, "/api/v1/timecards/entry-1/reject", env.token(t), map[string]string{"reason": ""})
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestTimecardHandler_BulkApprove(t *testing.T) {
	env := newHandlerTestEnv(t)
	env.timecard.bulkApprove = func(req timecard.BulkApproveRequest) (timecard.BulkApproveResponse, error) {
		assert.Equal(t, []string{"a", "b"}, req.EntryIDs)
		return timecard.BulkApproveResponse{
			Results: []timecard.BulkApproveResult{
				{EntryID: "a", Success: true},
				{EntryID: "b", Success: false, Error: timecard.ErrNotPending.Error()},
			},
			SuccessCount: 1,
			FailureCount: 1,
		}, nil
	}

	w, resp := env.do(t, http.MethodPost, "/api/v1/timecards/bulk-approve", env.token(t), map[string]interface{}{
		"entry_ids": []string{"a", "b"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["failure_count"])
}

func TestTimecardHandler_HourBankDefaultsToCaller(t *testing.T) {
	env := newHandlerTestEnv(t)
	env.timecard.hourBank = func(req timecard.HourBankRequest) (timecard.HourBankResponse, error) {
		assert.Equal(t, handlerTestUser, req.UserID)
		assert.Equal(t, "2024-03-01", req.StartDate)
		return timecard.HourBankResponse{UserID: req.UserID}, nil
	}

	w, _ := env.do(t, http.MethodGet, "/api/v1/timecards/hour-bank?start_date=2024-03-01&end_date=2024-03-31", env.token(t), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReportHandler_Get(t *testing.T) {
	env := newHandlerTestEnv(t)
	env.report.build = func(req report.ReportRequest) (report.Report, error) {
		assert.Equal(t, report.KindOvertime, req.Kind)
		assert.Equal(t, handlerTestTenant, req.TenantID)
		assert.Equal(t, handlerTestUser, req.UserID)
		assert.Equal(t, "pt-BR", req.Locale)
		return report.Report{Kind: req.Kind, Locale: req.Locale}, nil
	}

	w, resp := env.do(t, http.MethodGet, "/api/v1/reports/overtime?start_date=2024-03-01&end_date=2024-03-31&locale=pt-BR", env.token(t), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "overtime", data["kind"])
}

func TestReportHandler_Errors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{report.ErrInvalidKind, http.StatusNotFound},
		{report.ErrInvalidDateRange, http.StatusBadRequest},
		{report.ErrRangeTooLong, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			env := newHandlerTestEnv(t)
			env.report.build = func(req report.ReportRequest) (report.Report, error) {
				return report.Report{}, tc.err
			}

			w, _ := env.do(t, http.MethodGet, "/api/v1/reports/attendance", env.token(t), nil)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}
