package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/threatcombat/threatcombat/internal/api/domain"
	"github.com/threatcombat/threatcombat/internal/api/service"
	"github.com/threatcombat/threatcombat/internal/api/store"
	"github.com/threatcombat/threatcombat/pkg/httpx"
	"github.com/threatcombat/threatcombat/pkg/jwtx"
	"github.com/threatcombat/threatcombat/pkg/slogx"

	_ "github.com/threatcombat/threatcombat/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	AuthService    *service.AuthService
	AuthzService   *service.AuthzService
	UserService    *service.UserService
	ChapterService *service.ChapterService
	CatalogService *service.CatalogService
	AuditService   *service.AuditService

	// TokenInBody also returns the session token in the login response body
	// for non-browser clients. The cookie is always set.
	TokenInBody bool
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.MetricsMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerRoles()
	r.registerChapters()
	r.registerResearch()
	r.registerEvents()
	r.registerCourses()
	r.registerAudit()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			ThreatCombat Membership API
//	@version		0.1.0
//	@description	Membership management backend for university cybersecurity chapters: accounts,
//	@description	chapter rosters, executive positions, research, events, courses, and a full
//	@description	audit trail over every privileged operation.
//
//	@contact.name				ThreatCombat Team
//	@contact.url				https://github.com/threatcombat/threatcombat
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}". Browser clients may use the session cookie instead.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// actor resolves the authenticated user's full record. Claims only carry the
// role at token mint time; authorization decisions use the current record so
// demotions and suspensions take effect without waiting for token expiry.
func (r *Router) actor(w http.ResponseWriter, req *http.Request) (domain.User, bool) {
	userID := httpx.UserIDFromCtx(req.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Authentication required.")
		return domain.User{}, false
	}

	user, err := r.store.Users().GetByID(req.Context(), userID)
	if err != nil {
		// Token outlived the account.
		writeError(w, http.StatusUnauthorized, "Account no longer exists.")
		return domain.User{}, false
	}

	if user.MembershipStatus == domain.MembershipSuspended {
		writeError(w, http.StatusForbidden, "Account is suspended.")
		return domain.User{}, false
	}

	return user, true
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Router:      r,
		TokenInBody: r.TokenInBody,
	}

	// Public endpoints - strict rate limits by IP (abuse surface)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/verify-email",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Authenticated session endpoints
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService, Router: r}

	execPlus := []string{
		string(domain.RoleExecutive),
		string(domain.RoleChapterAdmin),
		string(domain.RoleSuperAdmin),
	}
	adminOnly := []string{
		string(domain.RoleChapterAdmin),
		string(domain.RoleSuperAdmin),
	}

	// GET /users - executive and above; service pins non-super actors to
	// their own chapter
	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(execPlus...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/users/stats",
		httpx.Chain(http.HandlerFunc(h.HandleStats),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	// Self-or-admin routes gate in the service, not the router
	r.Mux.Handle("GET /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleSuperAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/activate",
		httpx.Chain(http.HandlerFunc(h.HandleActivate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/suspend",
		httpx.Chain(http.HandlerFunc(h.HandleSuspend),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/promote",
		httpx.Chain(http.HandlerFunc(h.HandlePromote),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/{id}/demote",
		httpx.Chain(http.HandlerFunc(h.HandleDemote),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerRoles() {
	h := &RolesHandler{AuthzService: r.AuthzService, Router: r}

	adminOnly := []string{
		string(domain.RoleChapterAdmin),
		string(domain.RoleSuperAdmin),
	}

	// Role assignment is the most sensitive write surface; strict limit
	r.Mux.Handle("POST /v1/roles/assign",
		httpx.Chain(http.HandlerFunc(h.HandleAssign),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/roles/assign-executive",
		httpx.Chain(http.HandlerFunc(h.HandleAssignExecutive),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleChapterAdmin)),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerChapters() {
	h := &ChaptersHandler{
		ChapterService: r.ChapterService,
		UserService:    r.UserService,
		Router:         r,
	}

	execPlus := []string{
		string(domain.RoleExecutive),
		string(domain.RoleChapterAdmin),
		string(domain.RoleSuperAdmin),
	}

	// Chapter directory is public
	r.Mux.Handle("GET /v1/chapters",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/chapters/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	r.Mux.Handle("POST /v1/chapters",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleSuperAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/chapters/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(execPlus...),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/chapters/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleSuperAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("GET /v1/chapters/{id}/members",
		httpx.Chain(http.HandlerFunc(h.HandleMembers),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(execPlus...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerResearch() {
	h := &ResearchHandler{CatalogService: r.CatalogService, Router: r}

	// Reads are public; writes gate on capability in the service
	r.Mux.Handle("GET /v1/research",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/research/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/research",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/research/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/research/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerEvents() {
	h := &EventsHandler{CatalogService: r.CatalogService, Router: r}

	r.Mux.Handle("GET /v1/events",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/events/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/events",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/events/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/events/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerCourses() {
	h := &CoursesHandler{CatalogService: r.CatalogService, Router: r}

	r.Mux.Handle("GET /v1/courses",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /v1/courses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("POST /v1/courses",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/courses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/courses/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAudit() {
	h := &AuditHandler{AuditService: r.AuditService, Router: r}

	adminOnly := []string{
		string(domain.RoleChapterAdmin),
		string(domain.RoleSuperAdmin),
	}

	r.Mux.Handle("GET /v1/audit",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/audit/suspicious",
		httpx.Chain(http.HandlerFunc(h.HandleSuspicious),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/audit/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUserActivity),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/audit/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(adminOnly...),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	// Review advancement is super-admin territory
	r.Mux.Handle("POST /v1/audit/{id}/review",
		httpx.Chain(http.HandlerFunc(h.HandleReview),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRole(string(domain.RoleSuperAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", httpx.MetricsHandler())
}
