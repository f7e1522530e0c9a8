package v1

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/pos-service/internal/core/domain"
	logicv1 "github.com/duynhne/pos-service/internal/logic/v1"
	"github.com/duynhne/pos-service/middleware"
)

// CookieConfig controls the session cookie issued on login.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Services bundles the logic-layer dependencies of Handler.
type Services struct {
	Auth     *logicv1.AuthService
	Sessions *logicv1.SessionStore
	CSRF     *logicv1.CSRFGuard
	Roster   *logicv1.RosterManager
	Catalog  *logicv1.CatalogService
	Ledger   *logicv1.LedgerService
	Reports  *logicv1.ReportService
}

// Handler groups HTTP handlers for the POS API v1.
// Dependencies are injected via the constructor; there is no global state.
type Handler struct {
	auth     *logicv1.AuthService
	sessions *logicv1.SessionStore
	csrf     *logicv1.CSRFGuard
	roster   *logicv1.RosterManager
	catalog  *logicv1.CatalogService
	ledger   *logicv1.LedgerService
	reports  *logicv1.ReportService
	cookie   CookieConfig
}

// NewHandler creates a new Handler with the given services.
func NewHandler(svc Services, cookie CookieConfig) *Handler {
	return &Handler{
		auth:     svc.Auth,
		sessions: svc.Sessions,
		csrf:     svc.CSRF,
		roster:   svc.Roster,
		catalog:  svc.Catalog,
		ledger:   svc.Ledger,
		reports:  svc.Reports,
		cookie:   cookie,
	}
}

// Gate returns the auth gate bound to this handler's session store.
func (h *Handler) Gate() gin.HandlerFunc {
	return middleware.AuthGate(h.sessions, h.csrf, h.cookie.Name)
}

// RegisterRoutes registers all POS API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)

	protected := rg.Group("", h.Gate())
	protected.POST("/auth/logout", h.Logout)
	protected.GET("/auth/me", h.GetMe)

	protected.GET("/roster", h.ListRoster)
	protected.POST("/roster", h.AddToRoster)
	protected.DELETE("/roster", h.ClearRoster)
	protected.POST("/roster/serve-next", h.ServeNext)
	protected.DELETE("/roster/:position", h.RemoveFromRoster)
	protected.POST("/roster/:position/move-up", h.MoveUp)
	protected.POST("/roster/:position/move-down", h.MoveDown)
	protected.PUT("/roster/:position/status", h.SetRosterStatus)

	protected.GET("/transactions", h.ListTransactions)
	protected.POST("/transactions", h.RecordTransaction)

	manager := protected.Group("", middleware.RequireRole(domain.RoleManager))
	manager.DELETE("/transactions/:id", h.DeleteTransaction)

	manager.GET("/staff", h.ListStaff)
	manager.POST("/staff", h.CreateStaff)
	manager.PUT("/staff/:id", h.UpdateStaff)

	manager.GET("/services", h.ListServices)
	manager.POST("/services", h.CreateService)
	manager.PUT("/services/:id", h.UpdateService)

	manager.GET("/expenses", h.ListExpenses)
	manager.POST("/expenses", h.RecordExpense)
	manager.DELETE("/expenses/:id", h.DeleteExpense)

	manager.GET("/reports/:period", h.GetReport)
	manager.GET("/reports/:period/export", h.ExportReport)
}

// RegisterPages registers the browser entry points: the public login page
// and the protected dashboard.
func (h *Handler) RegisterPages(rg *gin.RouterGroup) {
	rg.GET(middleware.LoginPath, h.LoginPage)
	rg.GET("/", h.Gate(), h.Dashboard)
}

func startSpan(c *gin.Context, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	)
	return middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(attrs...))
}

// currentUserID returns the id of the user AuthGate admitted, 0 on public routes.
func currentUserID(c *gin.Context) int {
	if sess, ok := middleware.SessionFromContext(c); ok {
		return sess.UserID
	}
	return 0
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		badRequest(c, name+" must be an integer")
		return 0, false
	}
	return v, true
}
