package service

import (
	"context"
	"time"

	"github.com/Grey-kingreys/magazin-back-sub000/internal/apperr"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/config"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/dto"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/model"
	"github.com/Grey-kingreys/magazin-back-sub000/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
}

type authService struct {
	repo repository.UserRepository
	cfg  *config.Config
}

func NewAuthService(repo repository.UserRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.New(apperr.Forbidden, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperr.New(apperr.Forbidden, "invalid credentials")
	}
	return s.tokenPair(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, apperr.New(apperr.Forbidden, "refresh token invalid or expired")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperr.New(apperr.Forbidden, "malformed token")
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperr.New(apperr.Forbidden, "malformed token")
	}
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperr.New(apperr.Forbidden, "malformed token")
	}

	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.IsActive {
		return nil, apperr.New(apperr.Forbidden, "user not found or inactive")
	}
	return s.tokenPair(user)
}

func (s *authService) tokenPair(user *model.User) (*dto.LoginResponse, error) {
	access, err := s.generateToken(user, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "sign access token", err)
	}
	refresh, err := s.generateToken(user, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "sign refresh token", err)
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       user.ID.String(),
		Username:     user.Username,
		Role:         user.Role,
	}, nil
}

func (s *authService) generateToken(user *model.User, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(duration).Unix(),
		"iat":      time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
