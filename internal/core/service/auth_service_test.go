package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/srushti128/kodbank/internal/core/domain"
	"github.com/srushti128/kodbank/internal/core/ports"
	"github.com/srushti128/kodbank/internal/core/token"
)

func newTestAuthService(t *testing.T, users *stubUserRepo, sessions *stubSessionRepo) *AuthService {
	t.Helper()
	codec, err := token.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return NewAuthService(users, sessions, codec, time.Hour, zerolog.Nop())
}

func registerAlice(t *testing.T, svc *AuthService) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
		Phone:    "5551234",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return user
}

func TestAuthService_Register_Defaults(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), newStubSessionRepo())

	user := registerAlice(t, svc)
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected role %s, got %s", domain.RoleCustomer, user.Role)
	}
	if user.Balance != domain.DefaultBalance {
		t.Fatalf("expected balance %v, got %v", domain.DefaultBalance, user.Balance)
	}
	if user.PasswordHash == "correct horse" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_RoleNotAllowed(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), newStubSessionRepo())

	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "mallory",
		Email:    "mallory@example.com",
		Password: "pw123456",
		Role:     domain.RoleAdmin,
	})
	if !errors.Is(err, domain.ErrRoleNotAllowed) {
		t.Fatalf("expected ErrRoleNotAllowed, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), newStubSessionRepo())

	registerAlice(t, svc)
	_, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "pw123456",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_LoginThenValidate(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)
	user := registerAlice(t, svc)

	session, err := svc.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected a token")
	}

	wantExpiry := time.Now().UTC().Add(time.Hour)
	if d := session.ExpiresAt.Sub(wantExpiry); d < -5*time.Second || d > 5*time.Second {
		t.Fatalf("expiry %v not near now+1h", session.ExpiresAt)
	}

	// Record and token must carry the same expiry.
	rec, err := sessions.FindActive(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if !rec.Expiry.Equal(session.ExpiresAt) {
		t.Fatalf("record expiry %v != token expiry %v", rec.Expiry, session.ExpiresAt)
	}

	claims, err := svc.Validate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.Subject != "alice" || claims.Role != domain.RoleCustomer || claims.OwnerUID != user.UID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), newStubSessionRepo())
	registerAlice(t, svc)

	// Wrong password and unknown user look identical to the caller.
	if _, err := svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "nobody", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_StoreFailure(t *testing.T) {
	sessions := newStubSessionRepo()
	sessions.createErr = errors.New("mongo down")
	svc := newTestAuthService(t, newStubUserRepo(), sessions)
	registerAlice(t, svc)

	if _, err := svc.Login(context.Background(), "alice", "correct horse"); err == nil {
		t.Fatalf("expected login to fail when session persist fails")
	}
	if sessions.count() != 0 {
		t.Fatalf("expected no session records, got %d", sessions.count())
	}
}

func TestAuthService_LogoutRevokes(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)
	registerAlice(t, svc)

	session, err := svc.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := svc.Logout(context.Background(), session.Token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	// The token still verifies cryptographically...
	codec, _ := token.NewCodec("test-secret")
	if _, err := codec.Verify(session.Token); err != nil {
		t.Fatalf("codec Verify after logout: %v", err)
	}

	// ...but validation rejects it because the record is gone.
	if _, err := svc.Validate(context.Background(), session.Token); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after logout, got %v", err)
	}
}

func TestAuthService_Logout_UnknownTokenIsSuccess(t *testing.T) {
	svc := newTestAuthService(t, newStubUserRepo(), newStubSessionRepo())

	if err := svc.Logout(context.Background(), "never-issued"); err != nil {
		t.Fatalf("Logout of unknown token: %v", err)
	}
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout with empty token: %v", err)
	}
}

func TestAuthService_Validate_MissingToken_NoStoreCall(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)

	if _, err := svc.Validate(context.Background(), ""); !errors.Is(err, domain.ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
	if sessions.findCalls != 0 {
		t.Fatalf("expected no store lookup for missing token, got %d", sessions.findCalls)
	}
}

func TestAuthService_Validate_TamperedToken_NoStoreCall(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)
	registerAlice(t, svc)

	session, err := svc.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	sessions.findCalls = 0

	tampered := session.Token[:len(session.Token)-1]
	if session.Token[len(session.Token)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}
	if _, err := svc.Validate(context.Background(), tampered); !errors.Is(err, domain.ErrTokenSignatureInvalid) {
		t.Fatalf("expected ErrTokenSignatureInvalid, got %v", err)
	}
	if sessions.findCalls != 0 {
		t.Fatalf("codec rejection must short-circuit before the store, got %d lookups", sessions.findCalls)
	}
}

func TestAuthService_Validate_ExpiredToken(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)

	// Construct a past-expiry token directly against the codec.
	codec, _ := token.NewCodec("test-secret")
	signed, expiry, err := codec.Issue(token.Claims{Subject: "alice", Role: domain.RoleCustomer, OwnerUID: "uid-1"}, -time.Minute)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := sessions.Create(context.Background(), signed, "uid-1", expiry); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Validate(context.Background(), signed); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestAuthService_Validate_StoreErrorFailsClosed(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)
	registerAlice(t, svc)

	session, err := svc.Login(context.Background(), "alice", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	sessions.findErr = context.DeadlineExceeded
	if _, err := svc.Validate(context.Background(), session.Token); err == nil {
		t.Fatalf("expected validation to fail when the store lookup fails")
	}
}

func TestAuthService_ConcurrentLogins(t *testing.T) {
	sessions := newStubSessionRepo()
	svc := newTestAuthService(t, newStubUserRepo(), sessions)
	registerAlice(t, svc)

	const n = 4
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session, err := svc.Login(context.Background(), "alice", "correct horse")
			if err != nil {
				errs[i] = err
				return
			}
			tokens[i] = session.Token
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("login %d: %v", i, errs[i])
		}
		if _, dup := seen[tokens[i]]; dup {
			t.Fatalf("login %d produced a duplicate token", i)
		}
		seen[tokens[i]] = struct{}{}

		if _, err := svc.Validate(context.Background(), tokens[i]); err != nil {
			t.Fatalf("validate token %d: %v", i, err)
		}
	}
}
