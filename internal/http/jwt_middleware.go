package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"brainwaves/internal/service"
)

const (
	authClaimsKey = "auth_claims"
	profileIDKey  = "auth_profile_id"
)

// JWTAuthMiddleware validates teacher access tokens and stores the claims in
// the request context.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		claims, err := jwtSvc.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// ProfileOrUserAuthMiddleware accepts either a teacher access token or a
// profile token. Parents hold only the profile token from their share link,
// so the profile endpoints take both.
func ProfileOrUserAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			c.Abort()
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		if claims, err := jwtSvc.ParseAccessToken(token); err == nil {
			c.Set(authClaimsKey, claims)
			c.Next()
			return
		}
		if profileID, err := jwtSvc.ParseProfileToken(token); err == nil {
			c.Set(profileIDKey, profileID)
			c.Next()
			return
		}

		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		c.Abort()
	}
}

// RequireSuperuser gates a route to superusers. Must run after
// JWTAuthMiddleware.
func RequireSuperuser() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetAuthClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}
		if !claims.Superuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthClaims returns teacher claims stored by the auth middleware.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// GetProfileID returns the profile id stored by the dual auth middleware
// when the caller presented a profile token.
func GetProfileID(c *gin.Context) (string, bool) {
	val, ok := c.Get(profileIDKey)
	if !ok {
		return "", false
	}
	id, ok := val.(string)
	return id, ok
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	return strings.TrimSpace(header[len("Bearer "):]), true
}
