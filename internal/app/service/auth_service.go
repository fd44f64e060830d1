package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ikkim/sangjo-partner-backend/internal/app/model"
	"github.com/ikkim/sangjo-partner-backend/internal/app/repository"
	"github.com/ikkim/sangjo-partner-backend/pkg/logger"
	"github.com/ikkim/sangjo-partner-backend/pkg/redis"
	"github.com/ikkim/sangjo-partner-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrWrongTokenType     = errors.New("wrong token type")
	ErrSessionGone        = errors.New("session subject no longer active")
)

// LoginResult 로그인 성공 응답 재료
type LoginResult struct {
	Session model.Session   `json:"partner"`
	Tokens  *util.TokenPair `json:"tokens"`
	Admin   *model.Admin    `json:"-"`
}

type AuthService interface {
	ValidatePartnerCredentials(loginID, password string) (*model.Partner, error)
	ValidateAdminCredentials(loginID, password string) (model.AdminCredentialResult, error)
	PartnerCenterLogin(loginID, password string) (*LoginResult, error)
	AdminLogin(email, password string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
	Logout(ctx context.Context, claims *util.Claims, accessToken string) error
	SessionFromClaims(claims *util.Claims) (*model.Session, error)
}

type authService struct {
	partnerRepo   repository.PartnerRepository
	adminRepo     repository.AdminRepository
	blacklist     redis.TokenBlacklist
	jwtSecret     string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

func NewAuthService(
	partnerRepo repository.PartnerRepository,
	adminRepo repository.AdminRepository,
	blacklist redis.TokenBlacklist,
	jwtSecret string,
	accessExpiry, refreshExpiry time.Duration,
) AuthService {
	return &authService{
		partnerRepo:   partnerRepo,
		adminRepo:     adminRepo,
		blacklist:     blacklist,
		jwtSecret:     jwtSecret,
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
	}
}

// ValidatePartnerCredentials 아이디가 없거나, 비밀번호가 틀리거나, 활성 상태가 아니면 nil, ErrInvalidCredentials
func (s *authService) ValidatePartnerCredentials(loginID, password string) (*model.Partner, error) {
	partner, err := s.partnerRepo.FindByLoginID(strings.TrimSpace(loginID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !util.VerifyPassword(partner.PasswordHash, password) {
		logger.Warn("Partner login failed: invalid password", map[string]interface{}{
			"partner_id": partner.PartnerID,
		})
		return nil, ErrInvalidCredentials
	}
	if !partner.IsActive() {
		logger.Warn("Partner login failed: partner not active", map[string]interface{}{
			"partner_id": partner.PartnerID,
			"status":     partner.Status,
		})
		return nil, ErrInvalidCredentials
	}
	return partner, nil
}

// ValidateAdminCredentials adminId 또는 이메일. 성공하면 마지막 로그인 시간을 남긴다
func (s *authService) ValidateAdminCredentials(loginID, password string) (model.AdminCredentialResult, error) {
	admin, err := s.adminRepo.FindByLogin(strings.TrimSpace(loginID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.AdminCredentialResult{Valid: false}, nil
		}
		return model.AdminCredentialResult{}, err
	}

	if !util.VerifyPassword(admin.PasswordHash, password) {
		logger.Warn("Admin login failed: invalid password", map[string]interface{}{
			"admin_id": admin.AdminID,
		})
		return model.AdminCredentialResult{Valid: false}, nil
	}

	if err := s.adminRepo.UpdateLastLogin(admin.AdminID, time.Now()); err != nil {
		// 로그인 자체는 성공으로 본다
		logger.Warn("Failed to record admin last login", map[string]interface{}{
			"admin_id": admin.AdminID,
			"error":    err.Error(),
		})
	}

	return model.AdminCredentialResult{
		Valid:     true,
		Role:      admin.Role,
		AdminID:   admin.AdminID,
		AdminName: admin.AdminName,
	}, nil
}

// PartnerCenterLogin 파트너 계정을 먼저 보고, 없으면 관리자 계정을 본다
func (s *authService) PartnerCenterLogin(loginID, password string) (*LoginResult, error) {
	logger.Info("Partner center login attempt", map[string]interface{}{
		"login_id": loginID,
	})

	partner, err := s.ValidatePartnerCredentials(loginID, password)
	if err == nil {
		return s.issue(partnerSession(partner), nil)
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		return nil, err
	}

	result, err := s.ValidateAdminCredentials(loginID, password)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, ErrInvalidCredentials
	}
	return s.issue(adminSession(result), nil)
}

func (s *authService) AdminLogin(email, password string) (*LoginResult, error) {
	logger.Info("Admin login attempt", map[string]interface{}{
		"email": email,
	})

	result, err := s.ValidateAdminCredentials(email, password)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.FindByAdminID(result.AdminID)
	if err != nil {
		return nil, err
	}
	return s.issue(adminSession(result), admin)
}

// Refresh refresh 토큰으로 새 토큰 쌍을 발급한다. 주체가 비활성화됐으면 거절
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}

	revoked, err := s.blacklist.IsRevoked(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	session, err := s.SessionFromClaims(claims)
	if err != nil {
		return nil, err
	}

	// 한 번 쓴 refresh 토큰은 재사용하지 못하게 한다. 동시에 들어오면 먼저 차지한 요청만 통과
	claimed, err := s.blacklist.Claim(ctx, refreshToken, remaining(claims))
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrTokenRevoked
	}
	return s.issue(*session, nil)
}

func (s *authService) Logout(ctx context.Context, claims *util.Claims, accessToken string) error {
	logger.Info("Logout", map[string]interface{}{
		"subject": claims.Subject,
		"role":    claims.Role,
	})
	return s.blacklist.Revoke(ctx, accessToken, remaining(claims))
}

// SessionFromClaims 토큰 주체를 DB 에서 다시 읽어 현재 세션을 만든다
func (s *authService) SessionFromClaims(claims *util.Claims) (*model.Session, error) {
	switch model.SessionRole(claims.Role) {
	case model.RolePartner:
		partner, err := s.partnerRepo.FindByPartnerID(claims.Subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionGone
			}
			return nil, err
		}
		if !partner.IsActive() {
			return nil, ErrSessionGone
		}
		session := partnerSession(partner)
		return &session, nil

	case model.RoleAdmin:
		admin, err := s.adminRepo.FindByAdminID(claims.Subject)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSessionGone
			}
			return nil, err
		}
		session := adminSession(model.AdminCredentialResult{
			Valid:     true,
			Role:      admin.Role,
			AdminID:   admin.AdminID,
			AdminName: admin.AdminName,
		})
		return &session, nil
	}
	return nil, util.ErrInvalidToken
}

func (s *authService) issue(session model.Session, admin *model.Admin) (*LoginResult, error) {
	tokens, err := util.GenerateTokenPair(util.Identity{
		Subject:   session.PartnerID,
		Name:      session.Name,
		Role:      string(session.Level),
		AdminRole: string(session.AdminRole),
	}, s.jwtSecret, s.accessExpiry, s.refreshExpiry)
	if err != nil {
		logger.Error("Failed to generate tokens", err, map[string]interface{}{
			"subject": session.PartnerID,
		})
		return nil, err
	}

	logger.Info("Login succeeded", map[string]interface{}{
		"subject": session.PartnerID,
		"level":   session.Level,
	})
	return &LoginResult{Session: session, Tokens: tokens, Admin: admin}, nil
}

func partnerSession(p *model.Partner) model.Session {
	return model.Session{
		PartnerID: p.PartnerID,
		Name:      p.CompanyName,
		CustomURL: p.CustomURL,
		PointInfo: p.PointInfo,
		Level:     model.RolePartner,
		LoginID:   p.LoginID,
	}
}

func adminSession(r model.AdminCredentialResult) model.Session {
	name := r.AdminName
	if name == "" {
		name = "관리자"
	}
	return model.Session{
		PartnerID: r.AdminID,
		Name:      name,
		CustomURL: model.AdminParentID,
		Level:     model.RoleAdmin,
		AdminRole: r.Role,
	}
}

func remaining(claims *util.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 0
	}
	return time.Until(claims.ExpiresAt.Time)
}
