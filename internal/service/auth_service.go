package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"toko-bangunan-pos/internal/apperror"
	"toko-bangunan-pos/internal/model"
	"toko-bangunan-pos/internal/repository"
	"toko-bangunan-pos/pkg/jwt"
)

type AuthService interface {
	Login(username, password string) (*LoginResponse, error)
	ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error
	ValidateToken(tokenString string) (*TokenValidationResponse, error)
	Logout(userID uuid.UUID) error
}

type LoginResponse struct {
	Token      string             `json:"token"`
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type TokenValidationResponse struct {
	User       model.UserResponse `json:"user"`
	Role       *model.Role        `json:"role"`
	Privileges []string           `json:"privileges"`
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func invalidCredentials() error {
	return apperror.New(apperror.KindUnauthorized, "invalid username or password")
}

func (s *authService) Login(username, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.KindForbidden, "user account is inactive")
	}
	if !user.CheckPassword(password) {
		return nil, invalidCredentials()
	}

	roleCode := ""
	if user.Role != nil {
		roleCode = user.Role.Code
	}

	// Single session: a new login invalidates every older token.
	version := uuid.New().String()
	if err := s.userRepo.UpdateTokenVersion(user.ID, version); err != nil {
		return nil, apperror.Internal(err, "failed to update session")
	}
	now := time.Now()
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, apperror.Internal(err, "failed to update session")
	}
	user.TokenVersion = version
	user.LastLoginAt = &now

	token, err := s.tokens.Generate(user.ID, user.Username, user.FullName, roleCode, user.PrivilegeCodes(), version)
	if err != nil {
		return nil, apperror.Internal(err, "failed to generate token")
	}

	return &LoginResponse{
		Token:      token,
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

func (s *authService) ChangePassword(userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return lookupErr(err, "user")
	}
	if !user.CheckPassword(oldPassword) {
		return apperror.New(apperror.KindUnauthorized, "current password is incorrect")
	}
	if len(newPassword) < 6 {
		return apperror.Validation([]apperror.FieldError{{Field: "new_password", Tag: "min", Param: "6"}})
	}
	if err := user.SetPassword(newPassword); err != nil {
		return apperror.Internal(err, "failed to hash new password")
	}
	if err := s.userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		return apperror.Internal(err, "failed to update password")
	}
	return nil
}

func (s *authService) ValidateToken(tokenString string) (*TokenValidationResponse, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "%s", err.Error())
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, apperror.New(apperror.KindUnauthorized, "user not found")
	}
	if !user.IsActive {
		return nil, apperror.New(apperror.KindUnauthorized, "user account is inactive")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, apperror.New(apperror.KindUnauthorized, "session expired (logged in on another device)")
	}

	return &TokenValidationResponse{
		User:       user.ToResponse(),
		Role:       user.Role,
		Privileges: user.PrivilegeCodes(),
	}, nil
}

// Logout rotates the token version so the current token stops working.
func (s *authService) Logout(userID uuid.UUID) error {
	if err := s.userRepo.UpdateTokenVersion(userID, uuid.New().String()); err != nil {
		return apperror.Internal(err, "failed to end session")
	}
	return nil
}
