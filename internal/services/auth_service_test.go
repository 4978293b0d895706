package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/avdeyev/taskboard/internal/services"
	"github.com/avdeyev/taskboard/internal/testutil"
)

const testSigningKey = "test-signing-key"

type authFixture struct {
	svc    services.AuthService
	users  *testutil.FakeUserStore
	mailer *testutil.FakeMailer
}

func newAuthFixture(t *testing.T, tokenTTL time.Duration) *authFixture {
	t.Helper()
	users := testutil.NewFakeUserStore()
	mailer := testutil.NewFakeMailer()
	tokens := services.NewTokenService("taskboard-test", []byte(testSigningKey), tokenTTL)
	svc := services.NewAuthService(zerolog.Nop(), users, tokens, mailer)
	return &authFixture{
		svc:    svc,
		users:  users,
		mailer: mailer,
	}
}

func registerAlice(t *testing.T, f *authFixture) {
	t.Helper()
	_, err := f.svc.Register(context.Background(), services.RegisterParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw123",
	})
	if err != nil {
		t.Fatalf("Register(alice): %v", err)
	}
}

func TestRegisterReturnsUserRecord(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)

	user, err := f.svc.Register(context.Background(), services.RegisterParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw123",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.ID == 0 {
		t.Error("user id not assigned")
	}
	if user.PasswordHash == "pw123" || user.PasswordHash == "" {
		t.Error("password stored without hashing")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)

	_, err := f.svc.Register(context.Background(), services.RegisterParams{
		Username: "alice",
		Email:    "other@x.com",
		Password: "pw456",
	})
	if !errors.Is(err, services.ErrUsernameTaken) {
		t.Errorf("Register with taken username = %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)

	// A novel username does not rescue a taken email.
	_, err := f.svc.Register(context.Background(), services.RegisterParams{
		Username: "bob",
		Email:    "a@x.com",
		Password: "pw456",
	})
	if !errors.Is(err, services.ErrEmailTaken) {
		t.Errorf("Register with taken email = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterSendsWelcomeEmail(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)

	sent := f.mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	if sent[0].Email != "a@x.com" || sent[0].Username != "alice" {
		t.Errorf("welcome email = %+v, want alice/a@x.com", sent[0])
	}
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	f.mailer.Fail = errors.New("smtp down")

	user, err := f.svc.Register(context.Background(), services.RegisterParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw123",
	})
	if err != nil {
		t.Fatalf("Register with failing mailer: %v", err)
	}

	// Registration committed despite the mail failure.
	_, err = f.users.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Errorf("user not stored: %v", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)

	_, err := f.svc.Authenticate(context.Background(), "alice", "wrong")
	if !errors.Is(err, services.ErrUserPasswordMismatch) {
		t.Errorf("Authenticate with wrong password = %v, want ErrUserPasswordMismatch", err)
	}
}

func TestAuthenticateUnknownUsername(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)

	_, err := f.svc.Authenticate(context.Background(), "nobody", "pw123")
	if !errors.Is(err, services.ErrUserNotFound) {
		t.Errorf("Authenticate with unknown username = %v, want ErrUserNotFound", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)
	ctx := context.Background()

	result, err := f.svc.Authenticate(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	wantExpiry := time.Now().Add(24 * time.Hour)
	if diff := result.ExpiresAt.Sub(wantExpiry); diff < -time.Minute || diff > time.Minute {
		t.Errorf("token expiry = %v, want ~24h from now", result.ExpiresAt)
	}

	user, err := f.svc.Verify(ctx, result.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != result.User.ID {
		t.Errorf("token decoded to user %d, want %d", user.ID, result.User.ID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	f := newAuthFixture(t, -time.Hour)
	registerAlice(t, f)
	ctx := context.Background()

	result, err := f.svc.Authenticate(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	_, err = f.svc.Verify(ctx, result.Token)
	if !errors.Is(err, services.ErrInvalidToken) {
		t.Errorf("Verify expired token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyMalformedToken(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := f.svc.Verify(context.Background(), token)
		if !errors.Is(err, services.ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)
	ctx := context.Background()

	otherTokens := services.NewTokenService("taskboard-test", []byte("other-key"), 24*time.Hour)
	forged, _, err := otherTokens.Issue(1)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	_, err = f.svc.Verify(ctx, forged)
	if !errors.Is(err, services.ErrInvalidToken) {
		t.Errorf("Verify forged token = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyDeletedUser(t *testing.T) {
	f := newAuthFixture(t, 24*time.Hour)
	registerAlice(t, f)
	ctx := context.Background()

	result, err := f.svc.Authenticate(ctx, "alice", "pw123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	f.users.DeleteUser(result.User.ID)

	_, err = f.svc.Verify(ctx, result.Token)
	if !errors.Is(err, services.ErrInvalidToken) {
		t.Errorf("Verify token of deleted user = %v, want ErrInvalidToken", err)
	}
}
