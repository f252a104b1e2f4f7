package httpapi

import (
	"context"
	"fmt"
	"testing"
	"time"

	"henheaven/backend/internal/domain"
	"henheaven/backend/internal/store"
)

type userStoreStub struct {
	users map[string]domain.UserAccount
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: make(map[string]domain.UserAccount)}
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	if _, exists := s.users[user.Email]; exists {
		return store.ErrInvalidRequest
	}
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", len(s.users)+1)
	}
	s.users[user.Email] = user
	return nil
}

func (s *userStoreStub) GetUserByEmail(_ context.Context, email string) (*domain.UserAccount, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (s *userStoreStub) add(t *testing.T, email string, password string, mutate func(*domain.UserAccount)) {
	t.Helper()
	hash, err := hashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := domain.UserAccount{
		ID:            fmt.Sprintf("user-%d", len(s.users)+1),
		Name:          "Test User",
		Email:         email,
		PasswordHash:  hash,
		Role:          domain.RoleBuyer,
		EmailVerified: true,
		Status:        domain.UserStatusActive,
	}
	if mutate != nil {
		mutate(&user)
	}
	s.users[email] = user
}

func TestLoginSuccess(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "owner@example.test", "correct-horse", func(u *domain.UserAccount) {
		u.Role = domain.RoleAdmin
		u.Name = "Owner"
	})
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "Owner@Example.Test",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatalf("expected a token")
	}
	if resp.Role != domain.RoleAdmin || resp.Name != "Owner" {
		t.Fatalf("unexpected login response: %+v", resp)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "owner@example.test", "correct-horse", nil)
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	_, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.test",
		Password: "battery-staple",
	})
	if err == nil || err.Error() != "invalid credentials" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginUnknownEmailIsIndistinguishable(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, newUserStoreStub())

	_, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@example.test",
		Password: "whatever",
	})
	if err == nil || err.Error() != "invalid credentials" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsUnverifiedEmail(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "pending@example.test", "correct-horse", func(u *domain.UserAccount) {
		u.EmailVerified = false
	})
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	_, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "pending@example.test",
		Password: "correct-horse",
	})
	if err == nil || err.Error() != "email not verified" {
		t.Fatalf("expected email not verified, got %v", err)
	}
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "banned@example.test", "correct-horse", func(u *domain.UserAccount) {
		u.Status = domain.UserStatusSuspended
	})
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	_, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "banned@example.test",
		Password: "correct-horse",
	})
	if err == nil || err.Error() != "account is suspended" {
		t.Fatalf("expected account is suspended, got %v", err)
	}
}

func TestRegisterStoresHashAndLogsIn(t *testing.T) {
	stub := newUserStoreStub()
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	resp, err := auth.Register(context.Background(), domain.RegisterRequest{
		Name:     "Fresh Buyer",
		Email:    "Fresh@Example.Test",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if resp.AccessToken == "" || resp.Role != domain.RoleBuyer {
		t.Fatalf("unexpected register response: %+v", resp)
	}

	stored, ok := stub.users["fresh@example.test"]
	if !ok {
		t.Fatalf("expected user stored under lowercase email")
	}
	if stored.PasswordHash == "longenough" || !isPasswordHash(stored.PasswordHash) {
		t.Fatalf("password must be stored hashed, got %q", stored.PasswordHash)
	}
	if !verifyPassword(stored.PasswordHash, "longenough") {
		t.Fatalf("stored hash does not verify the original password")
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "taken@example.test", "correct-horse", nil)
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	_, err := auth.Register(context.Background(), domain.RegisterRequest{
		Name:     "Impostor",
		Email:    "taken@example.test",
		Password: "longenough",
	})
	if err == nil || err.Error() != "email already registered" {
		t.Fatalf("expected duplicate email error, got %v", err)
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, newUserStoreStub())
	ctx := context.Background()

	if _, err := auth.Register(ctx, domain.RegisterRequest{Email: "a@b.test", Password: "longenough"}); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if _, err := auth.Register(ctx, domain.RegisterRequest{Name: "A", Email: "not-an-email", Password: "longenough"}); err == nil {
		t.Fatalf("expected error for malformed email")
	}
	if _, err := auth.Register(ctx, domain.RegisterRequest{Name: "A", Email: "a@b.test", Password: "short"}); err == nil {
		t.Fatalf("expected error for short password")
	}
}

func TestParseTokenRoundTrip(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "owner@example.test", "correct-horse", func(u *domain.UserAccount) {
		u.ID = "user-owner"
		u.Name = "Owner"
		u.Role = domain.RoleAdmin
	})
	auth := NewAuthManager("test-secret-key", time.Hour, stub)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.test",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if actor.UserID != "user-owner" || actor.Name != "Owner" || actor.Role != domain.RoleAdmin {
		t.Fatalf("unexpected actor: %+v", actor)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "owner@example.test", "correct-horse", nil)

	issuer := NewAuthManager("one-secret-key-value", time.Hour, stub)
	verifier := NewAuthManager("another-secret-key!!", time.Hour, stub)

	resp, err := issuer.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.test",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	stub := newUserStoreStub()
	stub.add(t, "owner@example.test", "correct-horse", nil)
	auth := NewAuthManager("test-secret-key", time.Nanosecond, stub)

	resp, err := auth.Login(context.Background(), domain.LoginRequest{
		Email:    "owner@example.test",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}
