package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/pos-service/config"
	"github.com/duynhne/pos-service/internal/core/domain"
	"github.com/duynhne/pos-service/internal/core/repository/memory"
	logicv1 "github.com/duynhne/pos-service/internal/logic/v1"
	"github.com/duynhne/pos-service/middleware"
)

const (
	cookieName = "pos_session"
	password   = "correct-horse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()

	users := memory.NewUsers()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	_, err = users.Create(ctx, "boss", string(hash), domain.RoleManager)
	require.NoError(t, err)
	_, err = users.Create(ctx, "desk", string(hash), domain.RoleReception)
	require.NoError(t, err)

	sessionRepo := memory.NewSessions()
	staffRepo := memory.NewStaff()
	serviceRepo := memory.NewServices()
	txns := memory.NewTransactions()
	expenses := memory.NewExpenses()

	sessions := logicv1.NewSessionStore(sessionRepo, config.DefaultSessionTTL)
	h := NewHandler(Services{
		Auth:     logicv1.NewAuthService(users, sessions),
		Sessions: sessions,
		CSRF:     logicv1.NewCSRFGuard(sessionRepo),
		Roster:   logicv1.NewRosterManager(memory.NewRoster(), staffRepo, time.UTC),
		Catalog:  logicv1.NewCatalogService(staffRepo, serviceRepo),
		Ledger:   logicv1.NewLedgerService(txns, expenses, staffRepo, serviceRepo, time.UTC),
		Reports:  logicv1.NewReportService(txns, expenses, time.UTC),
	}, CookieConfig{Name: cookieName})

	r := gin.New()
	h.RegisterPages(&r.RouterGroup)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

// client replays the session cookie and CSRF token like a browser would.
type client struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
	csrf   string
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	if c.csrf != "" {
		req.Header.Set(middleware.CSRFHeader, c.csrf)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	if tok := w.Header().Get(middleware.CSRFHeader); tok != "" {
		c.csrf = tok
	}
	return w
}

func login(t *testing.T, r *gin.Engine, username string) *client {
	t.Helper()
	c := &client{t: t, router: r}
	w := c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	c.cookie = &http.Cookie{Name: cookies[0].Name, Value: cookies[0].Value}
	return c
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Code
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, w, &body)
	return body.Error.Message
}

func TestLogin_SetsCookieAndToken(t *testing.T) {
	r := newTestRouter(t)
	c := &client{t: t, router: r}

	w := c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "desk", "password": password})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookieName, cookies[0].Name)
	assert.Equal(t, 7776000, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	var resp domain.AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, "desk", resp.User.Username)
	assert.Equal(t, cookies[0].Value, resp.SessionID)
	assert.Equal(t, resp.CSRFToken, w.Header().Get(middleware.CSRFHeader))
}

func TestLogin_Rejects(t *testing.T) {
	r := newTestRouter(t)
	c := &client{t: t, router: r}

	w := c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "desk", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.CodeInvalidCredentials, errorCode(t, w))

	w = c.do(http.MethodPost, "/api/v1/auth/login", gin.H{"username": "desk"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, middleware.CodeInvalidRequest, errorCode(t, w))
}

func TestPages(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/api/v1/auth/login"`)

	c := login(t, r, "desk")
	w = c.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Signed in as desk")
	assert.Contains(t, w.Body.String(), c.csrf)
}

func TestMeAndLogout(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r, "boss")

	w := c.do(http.MethodGet, "/api/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		User domain.User `json:"user"`
	}
	decode(t, w, &me)
	assert.Equal(t, domain.RoleManager, me.User.Role)

	w = c.do(http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cleared := w.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, "", cleared[0].Value)
	assert.True(t, cleared[0].MaxAge < 0)

	// The old id is dead even if the client keeps sending it.
	w = c.do(http.MethodGet, "/api/v1/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, middleware.CodeAuthRequired, errorCode(t, w))
}

func TestWritesRequireCSRF(t *testing.T) {
	r := newTestRouter(t)
	c := login(t, r, "desk")

	token := c.csrf
	c.csrf = ""
	w := c.do(http.MethodPost, "/api/v1/roster/serve-next", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.CodeCSRFMissing, errorCode(t, w))

	c.csrf = "stale"
	w = c.do(http.MethodPost, "/api/v1/roster/serve-next", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, middleware.CodeCSRFInvalid, errorCode(t, w))
	assert.Equal(t, token, c.csrf, "rejections still advertise the bound token")

	w = c.do(http.MethodPost, "/api/v1/roster/serve-next", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"entry":null}`, w.Body.String())
}

func TestRosterFlow(t *testing.T) {
	r := newTestRouter(t)
	boss := login(t, r, "boss")
	desk := login(t, r, "desk")

	var ids []int
	for _, name := range []string{"Anna", "Bee", "Cat"} {
		w := boss.do(http.MethodPost, "/api/v1/staff", gin.H{"name": name})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var s domain.Staff
		decode(t, w, &s)
		ids = append(ids, s.ID)
	}

	w := boss.do(http.MethodPost, "/api/v1/staff", gin.H{"name": "anna"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, `staff name "anna" already exists`, errorMessage(t, w))

	for i, id := range ids {
		w := desk.do(http.MethodPost, "/api/v1/roster", gin.H{"staff_id": id})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var e domain.RosterEntry
		decode(t, w, &e)
		assert.Equal(t, i+1, e.Position)
	}

	w = desk.do(http.MethodPost, "/api/v1/roster", gin.H{"staff_id": ids[0]})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, middleware.CodeConflict, errorCode(t, w))
	assert.Contains(t, errorMessage(t, w), "already on roster at position 1")
	assert.NotContains(t, errorMessage(t, w), ": conflict")

	w = desk.do(http.MethodPost, "/api/v1/roster/1/move-up", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, middleware.CodeInvalidMove, errorCode(t, w))
	assert.Contains(t, errorMessage(t, w), "position 1 cannot move")

	w = desk.do(http.MethodPost, "/api/v1/roster/3/move-up", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = desk.do(http.MethodPut, "/api/v1/roster/1/status", gin.H{"status": "lunch"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = desk.do(http.MethodPut, "/api/v1/roster/1/status", gin.H{"status": "break"})
	require.Equal(t, http.StatusOK, w.Code)

	w = desk.do(http.MethodPost, "/api/v1/roster/serve-next", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var served struct {
		Entry domain.RosterEntry `json:"entry"`
	}
	decode(t, w, &served)
	assert.Equal(t, "Cat", served.Entry.StaffName)
	assert.Equal(t, domain.StatusServing, served.Entry.Status)

	w = desk.do(http.MethodDelete, "/api/v1/roster/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = desk.do(http.MethodDelete, "/api/v1/roster/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Entries []domain.RosterEntry `json:"entries"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Entries, 2)
	assert.Equal(t, "Cat", listed.Entries[0].StaffName)
	assert.Equal(t, 1, listed.Entries[0].Position)

	w = desk.do(http.MethodDelete, "/api/v1/roster", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = desk.do(http.MethodDelete, "/api/v1/roster", gin.H{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = desk.do(http.MethodGet, "/api/v1/roster", nil)
	decode(t, w, &listed)
	assert.Empty(t, listed.Entries)
}

func TestManagerOnlyRoutes(t *testing.T) {
	r := newTestRouter(t)
	desk := login(t, r, "desk")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/staff"},
		{http.MethodPost, "/api/v1/services"},
		{http.MethodGet, "/api/v1/expenses"},
		{http.MethodGet, "/api/v1/reports/daily"},
		{http.MethodDelete, "/api/v1/transactions/00000000-0000-0000-0000-000000000000"},
	} {
		w := desk.do(tc.method, tc.path, gin.H{})
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, middleware.CodeForbidden, errorCode(t, w))
	}
}

func TestLedgerAndReports(t *testing.T) {
	r := newTestRouter(t)
	boss := login(t, r, "boss")
	desk := login(t, r, "desk")

	w := boss.do(http.MethodPost, "/api/v1/staff", gin.H{"name": "Anna"})
	require.Equal(t, http.StatusCreated, w.Code)
	var staff domain.Staff
	decode(t, w, &staff)

	w = boss.do(http.MethodPost, "/api/v1/services", gin.H{"name": "Thai 60", "duration_minutes": 60, "price": 40000})
	require.Equal(t, http.StatusCreated, w.Code)
	var svc domain.Service
	decode(t, w, &svc)

	w = boss.do(http.MethodPost, "/api/v1/services", gin.H{"name": "Bad", "price": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = desk.do(http.MethodPost, "/api/v1/transactions", gin.H{"staff_id": staff.ID, "service_id": svc.ID, "tip": 2000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var txn domain.Transaction
	decode(t, w, &txn)
	assert.Equal(t, int64(40000), txn.Amount)

	w = desk.do(http.MethodGet, "/api/v1/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Transactions, 1)

	w = boss.do(http.MethodPost, "/api/v1/expenses", gin.H{"category": "Laundry", "amount": 5000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = boss.do(http.MethodGet, "/api/v1/reports/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report domain.Report
	decode(t, w, &report)
	assert.Equal(t, int64(40000), report.Gross)
	assert.Equal(t, int64(2000), report.Tips)
	assert.Equal(t, int64(37000), report.Net)

	w = boss.do(http.MethodGet, "/api/v1/reports/yearly", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = boss.do(http.MethodGet, "/api/v1/reports/weekly/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "report-weekly-")
	assert.NotEmpty(t, w.Body.Bytes())

	w = boss.do(http.MethodDelete, "/api/v1/transactions/"+txn.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = boss.do(http.MethodDelete, "/api/v1/transactions/"+txn.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
