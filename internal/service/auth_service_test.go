package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func newTestAuth(t *testing.T) (*AuthService, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	svc := NewAuthService(AuthDependencies{
		UserRepo:   users,
		Tokens:     auth.NewTokenManager("test-secret", time.Hour),
		BcryptCost: 4,
	})
	return svc, users
}

func TestRegisterDefaultsToCustomer(t *testing.T) {
	svc, _ := newTestAuth(t)

	user, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Carol",
		Email:    "Carol@Example.com",
		Password: "hunter2secret",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("role = %s, want CUSTOMER", user.Role)
	}
	if user.Email != "carol@example.com" {
		t.Fatalf("email = %s, want lowercased", user.Email)
	}
	if user.PasswordHash == "hunter2secret" || user.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuth(t)
	var domainErr *apperrors.DomainError

	_, err := svc.Register(context.Background(), RegisterInput{Name: "x", Email: "x@example.com", Password: "short"})
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("short password: err = %v, want VALIDATION_FAILED", err)
	}

	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "x", Email: "x@example.com", Password: "hunter2secret", Role: "SUPERVISOR",
	})
	if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("unknown role: err = %v, want VALIDATION_FAILED", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(t)
	input := RegisterInput{Name: "Carol", Email: "carol@example.com", Password: "hunter2secret"}

	if _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(context.Background(), input)
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
		t.Fatalf("err = %v, want CONFLICT", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestAuth(t)
	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Stan", Email: "stan@example.com", Password: "hunter2secret", Role: domain.RoleStaff,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	result, err := svc.Login(context.Background(), "STAN@example.com", "hunter2secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.Token == "" || result.User.Role != domain.RoleStaff {
		t.Fatalf("result = %+v", result)
	}

	var domainErr *apperrors.DomainError
	_, err = svc.Login(context.Background(), "stan@example.com", "wrong-password")
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("wrong password: err = %v, want UNAUTHORIZED", err)
	}
	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter2secret")
	if !errors.As(err, &domainErr) || domainErr.Code != "UNAUTHORIZED" {
		t.Fatalf("unknown user: err = %v, want UNAUTHORIZED", err)
	}
}
