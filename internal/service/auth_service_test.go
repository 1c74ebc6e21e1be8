package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bnu-scit/registrar-api/internal/models"
	appErrors "github.com/bnu-scit/registrar-api/pkg/errors"
)

// plainVerifier keeps credential tests fast and deterministic.
type plainVerifier struct{}

func (plainVerifier) Verify(storedHash, secret string) bool {
	return storedHash == "hashed:"+secret
}

func (plainVerifier) Hash(secret string) (string, error) {
	return "hashed:" + secret, nil
}

type mockAuthStudentRepo struct {
	student     *models.Student
	findErr     error
	updateErr   error
	updatedHash string
}

func (m *mockAuthStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.student, nil
}

func (m *mockAuthStudentRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedHash = passwordHash
	return nil
}

type mockAuthFacultyRepo struct {
	faculty     *models.Faculty
	findErr     error
	updateErr   error
	updatedHash string
}

func (m *mockAuthFacultyRepo) FindByEmail(ctx context.Context, email string) (*models.Faculty, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.faculty, nil
}

func (m *mockAuthFacultyRepo) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.faculty, nil
}

func (m *mockAuthFacultyRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedHash = passwordHash
	return nil
}

func newAuthService(students *mockAuthStudentRepo, faculty *mockAuthFacultyRepo) *AuthService {
	return NewAuthService(students, faculty, plainVerifier{}, validator.New(), zap.NewNop(), AuthConfig{
		Secret:            "test-secret",
		Expiration:        time.Hour,
		Issuer:            "registrar-api",
		AdminEmail:        "registrar@scit.bnu.edu.pk",
		AdminPasswordHash: "hashed:admin-pass",
	})
}

func TestAuthServiceLoginStudent(t *testing.T) {
	students := &mockAuthStudentRepo{student: &models.Student{
		ID: "2021-CS-042", FirstName: "Ayesha", LastName: "Khan", PasswordHash: "hashed:secret1",
	}}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "2021-CS-042", Password: "secret1", Role: models.RoleStudent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "2021-CS-042", resp.Principal.ID)
	assert.Equal(t, "Ayesha Khan", resp.Principal.FullName)
	assert.Equal(t, models.RoleStudent, resp.Principal.Role)
	assert.Greater(t, resp.ExpiresIn, int64(0))
}

func TestAuthServiceLoginFaculty(t *testing.T) {
	faculty := &mockAuthFacultyRepo{faculty: &models.Faculty{
		ID: 3, FirstName: "Sana", LastName: "Malik", PasswordHash: "hashed:secret2",
	}}
	svc := newAuthService(&mockAuthStudentRepo{}, faculty)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "sana.malik@scit.bnu.edu.pk", Password: "secret2", Role: models.RoleFaculty,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", resp.Principal.ID)
	assert.Equal(t, models.RoleFaculty, resp.Principal.Role)
}

func TestAuthServiceLoginAdmin(t *testing.T) {
	svc := newAuthService(&mockAuthStudentRepo{}, &mockAuthFacultyRepo{})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "registrar@scit.bnu.edu.pk", Password: "admin-pass", Role: models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, resp.Principal.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	students := &mockAuthStudentRepo{student: &models.Student{ID: "2021-CS-042", PasswordHash: "hashed:secret1"}}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "2021-CS-042", Password: "wrong", Role: models.RoleStudent,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginUnknownPrincipal(t *testing.T) {
	students := &mockAuthStudentRepo{findErr: sql.ErrNoRows}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "ghost", Password: "whatever", Role: models.RoleStudent,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceLoginWrongAdminEmail(t *testing.T) {
	svc := newAuthService(&mockAuthStudentRepo{}, &mockAuthFacultyRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "someone@else.example", Password: "admin-pass", Role: models.RoleAdmin,
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
}

func TestAuthServiceTokenRoundTrip(t *testing.T) {
	students := &mockAuthStudentRepo{student: &models.Student{
		ID: "2021-CS-042", FirstName: "Ayesha", LastName: "Khan", PasswordHash: "hashed:secret1",
	}}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Principal: "2021-CS-042", Password: "secret1", Role: models.RoleStudent,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "2021-CS-042", claims.PrincipalID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "Ayesha Khan", claims.FullName)
	assert.Equal(t, "registrar-api", claims.Issuer)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc := newAuthService(&mockAuthStudentRepo{}, &mockAuthFacultyRepo{})

	_, err := svc.ValidateToken("not-a-token")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceChangeStudentPassword(t *testing.T) {
	students := &mockAuthStudentRepo{student: &models.Student{ID: "2021-CS-042", PasswordHash: "hashed:old-pass"}}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	err := svc.ChangeStudentPassword(context.Background(), "2021-CS-042", models.ChangePasswordRequest{
		OldPassword: "old-pass", NewPassword: "new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:new-pass", students.updatedHash)
}

func TestAuthServiceChangeStudentPasswordWrongOld(t *testing.T) {
	students := &mockAuthStudentRepo{student: &models.Student{ID: "2021-CS-042", PasswordHash: "hashed:old-pass"}}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	err := svc.ChangeStudentPassword(context.Background(), "2021-CS-042", models.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "new-pass",
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidCredentials))
	assert.Empty(t, students.updatedHash)
}

func TestAuthServiceChangeFacultyPassword(t *testing.T) {
	faculty := &mockAuthFacultyRepo{faculty: &models.Faculty{ID: 3, PasswordHash: "hashed:old-pass"}}
	svc := newAuthService(&mockAuthStudentRepo{}, faculty)

	err := svc.ChangeFacultyPassword(context.Background(), 3, models.ChangePasswordRequest{
		OldPassword: "old-pass", NewPassword: "new-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "hashed:new-pass", faculty.updatedHash)
}

func TestAuthServiceResetStudentPassword(t *testing.T) {
	students := &mockAuthStudentRepo{}
	svc := newAuthService(students, &mockAuthFacultyRepo{})

	resp, err := svc.ResetStudentPassword(context.Background(), "2021-CS-042")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.TemporaryPassword)
	assert.Equal(t, "hashed:"+resp.TemporaryPassword, students.updatedHash)
	assert.False(t, strings.Contains(students.updatedHash, " "))
}

func TestAuthServiceResetFacultyPasswordMissing(t *testing.T) {
	faculty := &mockAuthFacultyRepo{updateErr: sql.ErrNoRows}
	svc := newAuthService(&mockAuthStudentRepo{}, faculty)

	_, err := svc.ResetFacultyPassword(context.Background(), 99)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
