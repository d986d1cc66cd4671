package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/athena-ems/athena/internal/auth"
	"github.com/athena-ems/athena/internal/metrics"
	"github.com/athena-ems/athena/internal/models"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "athena_session"

const contextKeyUser = "current_user"

// CurrentUser returns the principal set by RequireSession. The second value
// is false when no principal is attached to the request.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// RequireSession resolves the session cookie to a principal before any
// routing decision is made; only after resolution settles does it pick the
// 401 branch. 401 carries the login route the client should move to.
func RequireSession(identity *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
			return
		}

		user, err := identity.Resume(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "redirect": "/login"})
				return
			}
			if errors.Is(err, auth.ErrProfileNotFound) {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "employee profile not found for this account"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve session"})
			return
		}

		c.Set(contextKeyUser, user)
		c.Next()
	}
}

// RequireRole gates a route group to one role. A mismatched principal is
// pointed at its own default route instead of being let through.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": "/login"})
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "insufficient role",
				"redirect": defaultRoute(user.Role),
			})
			return
		}
		c.Next()
	}
}

func defaultRoute(role models.Role) string {
	if role == models.RoleAdmin {
		return "/admin"
	}
	return "/employee"
}

// ObserveRequests records request durations per method, route and status.
func ObserveRequests(mtr *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		mtr.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(startTime).Seconds())
	}
}
