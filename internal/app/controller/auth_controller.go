package controller

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sangjo-partner-backend/internal/app/service"
	apperrors "github.com/ikkim/sangjo-partner-backend/internal/errors"
	"github.com/ikkim/sangjo-partner-backend/internal/middleware"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
)

type AuthController struct {
	authService service.AuthService
}

func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// binding 태그 대신 직접 검사한다. 빈 값이면 화면 문구가 따로 있다
type PartnerCenterLoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// PartnerCenterLogin 파트너 계정을 먼저 보고, 없으면 관리자 계정으로 로그인한다
// POST /api/partner-center/login
func (ctrl *AuthController) PartnerCenterLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PartnerCenterLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid partner center login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}
	if strings.TrimSpace(req.LoginID) == "" || req.Password == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "아이디와 비밀번호를 입력해주세요")
		return
	}

	result, err := ctrl.authService.PartnerCenterLogin(strings.TrimSpace(req.LoginID), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Partner center login failed", map[string]interface{}{
				"login_id": req.LoginID,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "아이디 또는 비밀번호가 올바르지 않습니다")
			return
		}
		log.Error("Partner center login error", err, map[string]interface{}{
			"login_id": req.LoginID,
		})
		apperrors.InternalError(c, "로그인 처리 중 오류가 발생했습니다")
		return
	}

	log.Info("Partner center login", map[string]interface{}{
		"partner_id": result.Session.PartnerID,
		"level":      result.Session.Level,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"partner": result.Session,
		"tokens":  result.Tokens,
	})
}

// AdminLogin 관리자 전용 로그인 (이메일)
// POST /api/admin/login
func (ctrl *AuthController) AdminLogin(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "이메일과 비밀번호를 입력해주세요")
		return
	}

	result, err := ctrl.authService.AdminLogin(strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Warn("Admin login failed", map[string]interface{}{
				"email": req.Email,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "이메일 또는 비밀번호가 올바르지 않습니다")
			return
		}
		log.Error("Admin login error", err)
		apperrors.InternalError(c, "로그인 처리 중 오류가 발생했습니다")
		return
	}

	email := req.Email
	role := result.Session.AdminRole
	if result.Admin != nil {
		email = result.Admin.Email
		role = result.Admin.Role
	}

	log.Info("Admin login", map[string]interface{}{
		"admin_id": result.Session.PartnerID,
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"admin": gin.H{
			"email":   email,
			"role":    role,
			"loginAt": time.Now().UTC().Format(time.RFC3339),
		},
		"tokens": result.Tokens,
	})
}

// Refresh refresh 토큰으로 새 토큰 쌍을 받는다. 쓴 refresh 토큰은 폐기된다
// POST /api/auth/refresh
func (ctrl *AuthController) Refresh(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "refresh 토큰이 필요합니다")
		return
	}

	result, err := ctrl.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrExpiredToken):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "로그인이 만료되었습니다. 다시 로그인해주세요")
		case errors.Is(err, service.ErrTokenRevoked):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "이미 사용된 토큰입니다. 다시 로그인해주세요")
		case errors.Is(err, util.ErrInvalidToken),
			errors.Is(err, service.ErrWrongTokenType),
			errors.Is(err, service.ErrSessionGone):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "유효하지 않은 토큰입니다")
		default:
			log.Error("Token refresh failed", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"partner": result.Session,
		"tokens":  result.Tokens,
	})
}

// Logout 현재 access 토큰을 만료 시각까지 블랙리스트에 올린다
// POST /api/auth/logout
func (ctrl *AuthController) Logout(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	claims, ok := middleware.GetClaims(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	if err := ctrl.authService.Logout(c.Request.Context(), claims, middleware.GetAccessToken(c)); err != nil {
		log.Error("Logout failed", err, map[string]interface{}{
			"subject": claims.Subject,
		})
		apperrors.InternalError(c, "로그아웃 처리 중 오류가 발생했습니다")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "로그아웃되었습니다",
	})
}

// Me GET /api/partner-center/me
func (ctrl *AuthController) Me(c *gin.Context) {
	session, ok := middleware.GetSession(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"partner": session,
	})
}
