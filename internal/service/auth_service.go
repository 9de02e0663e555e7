package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"animal-shelter/internal/core/auth"
	"animal-shelter/internal/core/errs"
	"animal-shelter/internal/domain"
	"animal-shelter/internal/repo"
	"animal-shelter/pkg/utils"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Code     string `json:"code" binding:"omitempty,len=6,numeric"`
}

type Session struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type AdminCreated struct {
	User       *domain.User `json:"user"`
	OTPAuthURL string       `json:"otpauthUrl,omitempty"`
}

// AuthService 登录校验：密码 + 可选 TOTP
type AuthService struct {
	store      *repo.Store
	jwt        *auth.JWTer
	totp       *auth.TOTP
	require2FA bool
	log        *zap.Logger
}

func NewAuthService(store *repo.Store, jwt *auth.JWTer, totp *auth.TOTP, require2FA bool, log *zap.Logger) *AuthService {
	return &AuthService{store: store, jwt: jwt, totp: totp, require2FA: require2FA, log: log}
}

// Authenticate 失败一律返回同一条消息，不区分用户不存在或密码错误
func (s *AuthService) Authenticate(ctx context.Context, in LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.Persistence("load user failed", err)
	}
	if u == nil || !utils.CheckPassword(in.Password, u.PasswordHash) {
		s.log.Warn("login rejected", zap.String("reason", "credentials"))
		return nil, errs.Unauthorized("invalid credentials")
	}
	switch {
	case u.TOTPSecret != "":
		if !s.totp.Verify(u.TOTPSecret, strings.TrimSpace(in.Code)) {
			s.log.Warn("login rejected", zap.String("reason", "second_factor"), zap.String("user_id", u.ID))
			return nil, errs.Unauthorized("invalid second factor code")
		}
	case s.require2FA:
		s.log.Warn("login rejected", zap.String("reason", "2fa_not_enrolled"), zap.String("user_id", u.ID))
		return nil, errs.Unauthorized("second factor not enrolled")
	}

	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	s.log.Info("login ok", zap.String("user_id", u.ID))
	return &Session{Token: tok, UserID: u.ID, Role: u.Role}, nil
}

func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string, with2FA bool) (*AdminCreated, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	f := fields{}
	f.required("email", email)
	f.email("email", email)
	f.required("password", password)
	if err := f.err(); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, errs.Field("password", err.Error())
	}
	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	}
	out := &AdminCreated{User: u}
	if with2FA {
		en, err := s.totp.Enroll(email)
		if err != nil {
			return nil, err
		}
		u.TOTPSecret, out.OTPAuthURL = en.Secret, en.URL
	}

	existing, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errs.Persistence("load user failed", err)
	}
	if existing != nil {
		return nil, errs.Conflict("email already registered")
	}
	if err := s.store.Users.Create(ctx, u); err != nil {
		return nil, errs.Persistence("create user failed", err)
	}
	s.log.Info("admin created", zap.String("user_id", u.ID), zap.Bool("totp", with2FA))
	return out, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	u, err := s.store.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, errs.Persistence("load user failed", err)
	}
	if u == nil {
		return nil, errs.NotFound("user not found")
	}
	return u, nil
}
