package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	"github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

// gin context keys
const (
	ClaimsKey      = "auth_claims"
	SessionKey     = "auth_session"
	AccessTokenKey = "auth_access_token"
)

// SessionResolver 토큰 주체를 현재 세션으로 바꾼다 (service.AuthService)
type SessionResolver interface {
	SessionFromClaims(claims *util.Claims) (*model.Session, error)
}

type AuthMiddleware struct {
	jwtSecret string
	blacklist redis.TokenBlacklist
	sessions  SessionResolver
}

func NewAuthMiddleware(jwtSecret string, blacklist redis.TokenBlacklist, sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		blacklist: blacklist,
		sessions:  sessions,
	}
}

// Authenticate access 토큰 필수. 웹소켓은 ?token= 으로 보낸다
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "인증 형식이 올바르지 않습니다")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
		}
		if token == "" {
			errors.Unauthorized(c, "로그인이 필요합니다")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if stderrors.Is(err, util.ErrExpiredToken) {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "로그인이 만료되었습니다")
			} else {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			}
			c.Abort()
			return
		}
		if claims.TokenType != util.TokenTypeAccess {
			errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "유효하지 않은 인증 토큰입니다")
			c.Abort()
			return
		}

		if m.blacklist != nil {
			revoked, err := m.blacklist.IsRevoked(c.Request.Context(), token)
			if err != nil {
				log.Error("Failed to check token blacklist", err)
				errors.InternalError(c, "")
				c.Abort()
				return
			}
			if revoked {
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "로그아웃된 토큰입니다")
				c.Abort()
				return
			}
		}

		session, err := m.sessions.SessionFromClaims(claims)
		if err != nil {
			if stderrors.Is(err, service.ErrSessionGone) || stderrors.Is(err, util.ErrInvalidToken) {
				log.Warn("Session no longer valid", map[string]interface{}{
					"subject": claims.Subject,
					"role":    claims.Role,
				})
				errors.RespondWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "사용할 수 없는 계정입니다. 다시 로그인해주세요")
			} else {
				log.Error("Failed to load session", err, map[string]interface{}{
					"subject": claims.Subject,
				})
				errors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(SessionKey, session)
		c.Set(AccessTokenKey, token)

		log.Debug("Authenticated", map[string]interface{}{
			"subject": claims.Subject,
			"role":    claims.Role,
		})
		c.Next()
	}
}

// RequireRole Authenticate 뒤에 둔다. roles 는 partner, admin
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzRoleNotFound, "권한 정보를 찾을 수 없습니다")
			c.Abort()
			return
		}

		for _, r := range roles {
			if string(session.Level) == r {
				c.Next()
				return
			}
		}

		GetLoggerFromContext(c).Warn("Insufficient permissions", map[string]interface{}{
			"subject":        session.PartnerID,
			"level":          session.Level,
			"required_roles": roles,
			"path":           c.Request.URL.Path,
		})
		if len(roles) == 1 && roles[0] == string(model.RoleAdmin) {
			errors.RespondWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "관리자만 사용할 수 있습니다")
		} else {
			errors.Forbidden(c, "")
		}
		c.Abort()
	}
}

func GetSession(c *gin.Context) (*model.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*model.Session)
	return session, ok
}

func GetClaims(c *gin.Context) (*util.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*util.Claims)
	return claims, ok
}

func GetAccessToken(c *gin.Context) string {
	return c.GetString(AccessTokenKey)
}
