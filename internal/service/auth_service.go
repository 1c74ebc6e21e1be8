package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

// CredentialVerifier abstracts credential comparison so the hashing scheme
// can change without touching scheduling or enrollment logic.
type CredentialVerifier interface {
	Verify(storedHash, secret string) bool
	Hash(secret string) (string, error)
}

// BcryptVerifier implements CredentialVerifier with bcrypt.
type BcryptVerifier struct{}

// Verify compares a bcrypt hash against the candidate secret.
func (BcryptVerifier) Verify(storedHash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(secret)) == nil
}

// Hash derives a bcrypt hash for the secret.
func (BcryptVerifier) Hash(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type authStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type authFacultyRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Faculty, error)
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	Secret            string
	Expiration        time.Duration
	Issuer            string
	AdminEmail        string
	AdminPasswordHash string
}

// AuthService authenticates students, faculty and the administrator and
// issues access tokens.
type AuthService struct {
	students  authStudentRepository
	faculty   authFacultyRepository
	verifier  CredentialVerifier
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students authStudentRepository, faculty authFacultyRepository, verifier CredentialVerifier, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{students: students, faculty: faculty, verifier: verifier, validator: validate, logger: logger, config: config}
}

// Login authenticates a principal and returns an issued token. Students log
// in with their student id, faculty with their email, the administrator
// with the configured admin email.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	var principal models.Principal
	var storedHash string

	switch req.Role {
	case models.RoleStudent:
		student, err := s.students.FindByID(ctx, req.Principal)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
		}
		principal = models.Principal{ID: student.ID, FullName: student.FirstName + " " + student.LastName, Role: models.RoleStudent}
		storedHash = student.PasswordHash
	case models.RoleFaculty:
		faculty, err := s.faculty.FindByEmail(ctx, req.Principal)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load faculty")
		}
		principal = models.Principal{ID: strconv.FormatInt(faculty.ID, 10), FullName: faculty.FullName(), Role: models.RoleFaculty}
		storedHash = faculty.PasswordHash
	case models.RoleAdmin:
		if req.Principal != s.config.AdminEmail || s.config.AdminPasswordHash == "" {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		principal = models.Principal{ID: s.config.AdminEmail, FullName: "Administrator", Role: models.RoleAdmin}
		storedHash = s.config.AdminPasswordHash
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	if !s.verifier.Verify(storedHash, req.Password) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	token, expiresAt, err := s.generateToken(principal)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	now := time.Now().UTC()
	s.logger.Info("login", zap.String("principal", principal.ID), zap.String("role", string(principal.Role)))
	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(expiresAt.Sub(now).Seconds()),
		IssuedAt:    now,
		Principal:   principal,
	}, nil
}

// ValidateToken parses and validates an access token.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

// ChangeStudentPassword rotates a student's credential after verifying the
// old one.
func (s *AuthService) ChangeStudentPassword(ctx context.Context, studentID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load student")
	}
	if !s.verifier.Verify(student.PasswordHash, req.OldPassword) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	hashed, err := s.verifier.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.students.UpdatePassword(ctx, studentID, hashed); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update password")
	}
	return nil
}

// ChangeFacultyPassword rotates a faculty credential after verifying the
// old one.
func (s *AuthService) ChangeFacultyPassword(ctx context.Context, facultyID int64, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid password payload")
	}
	faculty, err := s.faculty.FindByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to load faculty")
	}
	if !s.verifier.Verify(faculty.PasswordHash, req.OldPassword) {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	hashed, err := s.verifier.Hash(req.NewPassword)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.faculty.UpdatePassword(ctx, facultyID, hashed); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to update password")
	}
	return nil
}

// ResetStudentPassword issues a random temporary password for a student.
// The plaintext is returned once and never stored.
func (s *AuthService) ResetStudentPassword(ctx context.Context, studentID string) (*models.ResetPasswordResponse, error) {
	temp, hashed, err := s.temporaryPassword()
	if err != nil {
		return nil, err
	}
	if err := s.students.UpdatePassword(ctx, studentID, hashed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to reset password")
	}
	return &models.ResetPasswordResponse{TemporaryPassword: temp}, nil
}

// ResetFacultyPassword issues a random temporary password for a faculty
// member.
func (s *AuthService) ResetFacultyPassword(ctx context.Context, facultyID int64) (*models.ResetPasswordResponse, error) {
	temp, hashed, err := s.temporaryPassword()
	if err != nil {
		return nil, err
	}
	if err := s.faculty.UpdatePassword(ctx, facultyID, hashed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStore.Code, appErrors.ErrStore.Status, "failed to reset password")
	}
	return &models.ResetPasswordResponse{TemporaryPassword: temp}, nil
}

func (s *AuthService) temporaryPassword() (plain, hashed string, err error) {
	buf := make([]byte, 9)
	if _, err := rand.Read(buf); err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate password")
	}
	plain = base64.RawURLEncoding.EncodeToString(buf)
	hashed, err = s.verifier.Hash(plain)
	if err != nil {
		return "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	return plain, hashed, nil
}

func (s *AuthService) generateToken(principal models.Principal) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.config.Expiration)
	claims := models.JWTClaims{
		PrincipalID: principal.ID,
		Role:        principal.Role,
		FullName:    principal.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
