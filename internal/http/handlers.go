package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tazhibayda/portal-service/internal/domain"
	"github.com/tazhibayda/portal-service/internal/log"
	"github.com/tazhibayda/portal-service/internal/metrics"
	"github.com/tazhibayda/portal-service/internal/queue"
	"github.com/tazhibayda/portal-service/internal/security"
)

const eventsExchange = "portal.events"

// The two notices shown to the client. Deliberately generic: the real
// cause goes to server logs only, never to the browser.
const (
	noticeBadCredentials = "Invalid credentials"
	noticeSignUpFailed   = "Registration failed"
	noticeSignUpOK       = "Account created, please sign in"
)

// IdentityProvider is the facade's view of the identity provider.
// Sign-in resolves by email only; password verification is the
// provider's concern and is not exposed through this surface.
type IdentityProvider interface {
	FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error)
	CreateAccount(ctx context.Context, email, password, name string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, uid string) error
}

// ProfileStore holds the denormalized profile documents keyed by UID.
// A missing document is (nil, nil), never an error.
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*domain.Profile, error)
	UpsertProfile(ctx context.Context, uid, name, email string) error
}

// SessionStore keeps the server-side session records behind the opaque
// cookie token.
type SessionStore interface {
	SaveSession(ctx context.Context, token string, su domain.SessionUser, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (*domain.SessionUser, error)
	DeleteSession(ctx context.Context, token string) error
}

type Handler struct {
	Identity IdentityProvider
	Profiles ProfileStore
	Sessions SessionStore
	Events   queue.Publisher

	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration

	// HealthPing reports backing-store health for /healthz; nil means
	// always healthy (used in tests).
	HealthPing func(ctx context.Context) error
}

func NewHandler(identity IdentityProvider, profiles ProfileStore, sessions SessionStore,
	events queue.Publisher, cookieName string, cookieSecure bool, ttl time.Duration) *Handler {
	return &Handler{
		Identity:     identity,
		Profiles:     profiles,
		Sessions:     sessions,
		Events:       events,
		CookieName:   cookieName,
		CookieSecure: cookieSecure,
		SessionTTL:   ttl,
	}
}

type signInForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type signUpForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
	Name     string `form:"name" binding:"required"`
}

// Home renders the dashboard for an authenticated session and the
// sign-in view otherwise. Read-only: anonymous requests never touch the
// profile store.
func (h *Handler) Home(c *gin.Context) {
	su := h.sessionUser(c)
	if su == nil {
		c.HTML(http.StatusOK, "login.html", gin.H{"flash": takeFlash(c)})
		return
	}
	log.L().Debug("user in session",
		zap.String("uid", su.UID), zap.String("email", su.Email))

	p, err := h.Profiles.GetProfile(c.Request.Context(), su.UID)
	if err != nil {
		// absent-profile indicator is rendered instead of an error page
		log.L().Error("profile read failed", zap.Error(err), zap.String("uid", su.UID))
		p = nil
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"user":    su,
		"profile": p,
		"flash":   takeFlash(c),
	})
}

func (h *Handler) SignInForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"flash": takeFlash(c)})
}

// SignIn resolves the account by email via the identity provider and,
// on success, writes the session record {email, uid}. Every failure
// collapses to the same generic notice.
func (h *Handler) SignIn(c *gin.Context) {
	var in signInForm
	if err := c.ShouldBind(&in); err != nil {
		h.failSignIn(c, "sign-in payload rejected", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	ctx := c.Request.Context()

	acct, err := h.Identity.FindAccountByEmail(ctx, email)
	if err != nil {
		h.failSignIn(c, "account resolve failed", err)
		return
	}

	// diagnostic read only; a missing profile does not block sign-in
	if p, err := h.Profiles.GetProfile(ctx, acct.UID); err == nil && p != nil {
		log.L().Debug("profile present at sign-in", zap.String("uid", acct.UID))
	}

	token, err := security.NewSessionToken()
	if err != nil {
		h.failSignIn(c, "session token generation failed", err)
		return
	}
	su := domain.SessionUser{Email: email, UID: acct.UID}
	if err := h.Sessions.SaveSession(ctx, token, su, h.SessionTTL); err != nil {
		h.failSignIn(c, "session save failed", err)
		return
	}
	h.setSessionCookie(c, token, int(h.SessionTTL.Seconds()))

	h.publish(c, "user.signedin", queue.UserSignedIn{UID: acct.UID, Email: email})
	metrics.SignIns.WithLabelValues("ok").Inc()
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) failSignIn(c *gin.Context, msg string, err error) {
	log.L().Warn(msg, zap.Error(err))
	metrics.SignIns.WithLabelValues("failed").Inc()
	setFlash(c, noticeBadCredentials)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) SignUpForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{"flash": takeFlash(c)})
}

// SignUp creates the account via the identity provider, then writes the
// profile document at the assigned UID. It never establishes a session:
// the user signs in separately. A failed profile write triggers a
// compensating account delete so no orphan account is left behind.
func (h *Handler) SignUp(c *gin.Context) {
	var in signUpForm
	if err := c.ShouldBind(&in); err != nil {
		h.failSignUp(c, "sign-up payload rejected", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	ctx := c.Request.Context()

	acct, err := h.Identity.CreateAccount(ctx, email, in.Password, name)
	if err != nil {
		h.failSignUp(c, "account create failed", err)
		return
	}

	if err := h.Profiles.UpsertProfile(ctx, acct.UID, name, email); err != nil {
		log.L().Error("profile write failed, compensating",
			zap.Error(err), zap.String("uid", acct.UID))
		if derr := h.Identity.DeleteAccount(ctx, acct.UID); derr != nil {
			log.L().Error("compensating account delete failed",
				zap.Error(derr), zap.String("uid", acct.UID))
		}
		metrics.SignUps.WithLabelValues("failed").Inc()
		setFlash(c, noticeSignUpFailed)
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}

	h.publish(c, "user.registered", queue.UserRegistered{UID: acct.UID, Email: email, Name: name})
	metrics.SignUps.WithLabelValues("ok").Inc()
	setFlash(c, noticeSignUpOK)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *Handler) failSignUp(c *gin.Context, msg string, err error) {
	log.L().Warn(msg, zap.Error(err))
	metrics.SignUps.WithLabelValues("failed").Inc()
	setFlash(c, noticeSignUpFailed)
	c.Redirect(http.StatusSeeOther, "/register")
}

// SignOut clears the session record and expires the cookie. Idempotent:
// a second sign-out is a no-op. No provider interaction.
func (h *Handler) SignOut(c *gin.Context) {
	if token, err := c.Cookie(h.CookieName); err == nil && token != "" {
		if err := h.Sessions.DeleteSession(c.Request.Context(), token); err != nil {
			log.L().Error("session delete failed", zap.Error(err))
		}
	}
	h.setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) Healthz(c *gin.Context) {
	if h.HealthPing != nil {
		if err := h.HealthPing(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// sessionUser resolves the current session, returning nil for anonymous
// requests. A session-store failure is logged and treated as anonymous
// rather than surfaced.
func (h *Handler) sessionUser(c *gin.Context) *domain.SessionUser {
	token, err := c.Cookie(h.CookieName)
	if err != nil || token == "" {
		return nil
	}
	su, err := h.Sessions.GetSession(c.Request.Context(), token)
	if err != nil {
		log.L().Error("session lookup failed", zap.Error(err))
		return nil
	}
	return su
}

func (h *Handler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, token, maxAge, "/", "", h.CookieSecure, true)
}

func (h *Handler) publish(c *gin.Context, key string, event any) {
	reqID := c.GetString(requestIDKey)
	go func() {
		if err := h.Events.Publish(context.Background(), eventsExchange, key, event, reqID); err != nil {
			log.L().Warn("event publish failed", zap.String("key", key), zap.Error(err))
		}
	}()
}
