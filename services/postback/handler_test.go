package postback

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Devraj069/TaskWin/pkg/middleware"
)

func newTestRouter(t *testing.T, svc *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.Error())
	NewHandler(svc).Register(engine)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, target string, form url.Values) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestReceiveApprovedViaGet(t *testing.T) {
	f := newFixture(t)
	f.seedPendingClaim(t, "user_1", 50)
	engine := newTestRouter(t, f.svc)

	rec, body := doRequest(t, engine, http.MethodGet, "/postback?sub_id=user_1&status=approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "user_1", body["userId"])
	require.Equal(t, "approved", body["status"])
}

func TestReceiveApprovedViaPostForm(t *testing.T) {
	f := newFixture(t)
	f.seedPendingClaim(t, "user_1", 50)
	engine := newTestRouter(t, f.svc)

	form := url.Values{}
	form.Set("sub_id", "user_1")
	form.Set("status", "approved")

	rec, body := doRequest(t, engine, http.MethodPost, "/postback", form)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
}

func TestReceiveMissingParams(t *testing.T) {
	f := newFixture(t)
	engine := newTestRouter(t, f.svc)

	rec, body := doRequest(t, engine, http.MethodGet, "/postback?status=approved", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["success"])
	require.Contains(t, body["error"], "Missing required parameters")
}

func TestReceiveNoPendingClaims(t *testing.T) {
	f := newFixture(t)
	engine := newTestRouter(t, f.svc)

	rec, body := doRequest(t, engine, http.MethodGet, "/postback?sub_id=ghost&status=approved", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["success"])
	require.Equal(t, "No pending tasks found for user", body["error"])
}

func TestReceiveUnrecognizedStatus(t *testing.T) {
	f := newFixture(t)
	f.seedPendingClaim(t, "user_1", 50)
	engine := newTestRouter(t, f.svc)

	rec, body := doRequest(t, engine, http.MethodGet, "/postback?sub_id=user_1&status=chargeback", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, false, body["success"])
}

func TestPreflight(t *testing.T) {
	f := newFixture(t)
	engine := newTestRouter(t, f.svc)

	req := httptest.NewRequest(http.MethodOptions, "/postback", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestReceiveSetsCORSHeaders(t *testing.T) {
	f := newFixture(t)
	f.seedPendingClaim(t, "user_1", 50)
	engine := newTestRouter(t, f.svc)

	rec, _ := doRequest(t, engine, http.MethodGet, "/postback?sub_id=user_1&status=approved", nil)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestTestEndpointDefaults(t *testing.T) {
	f := newFixture(t)
	f.seedPendingClaim(t, "test_user", 50)
	engine := newTestRouter(t, f.svc)

	rec, body := doRequest(t, engine, http.MethodGet, "/postback/test", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, body["success"])
	require.Equal(t, "test_user", body["userId"])
	require.Equal(t, "approved", body["status"])
}
