package usecase

import (
	"testing"
	"time"

	authdomain "readerdash/internal/auth/domain"
	authdto "readerdash/internal/auth/dto"
	"readerdash/internal/auth/repository"
	"readerdash/pkg/config"
)

type fakeUserRepo struct {
	users   []*authdomain.User
	refresh map[string]*authdomain.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{refresh: make(map[string]*authdomain.RefreshToken)}
}

func (f *fakeUserRepo) Create(user *authdomain.User) error {
	if user.ID == "" {
		user.ID = "user-1"
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(*authdomain.User) error { return nil }

func (f *fakeUserRepo) CountUsers() (int64, error) { return int64(len(f.users)), nil }

func (f *fakeUserRepo) SaveRefreshToken(token *authdomain.RefreshToken) error {
	f.refresh[token.Token] = token
	return nil
}

func (f *fakeUserRepo) FindRefreshToken(token string) (*authdomain.RefreshToken, error) {
	return f.refresh[token], nil
}

func (f *fakeUserRepo) DeleteRefreshToken(token string) error {
	delete(f.refresh, token)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 7 * 24 * time.Hour,
	}
}

func TestRegisterFirstAccount(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewAuthUsecase(userRepo, testConfig())

	resp, err := uc.Register(&authdto.RegisterRequest{Email: "me@example.com", Password: "hunter22", Name: "Me"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected token pair on registration")
	}
	if resp.User.Password == "" || resp.User.Password == "hunter22" {
		t.Error("password must be stored hashed")
	}
}

func TestRegisterClosedAfterFirstAccount(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewAuthUsecase(userRepo, testConfig())

	if _, err := uc.Register(&authdto.RegisterRequest{Email: "me@example.com", Password: "hunter22"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := uc.Register(&authdto.RegisterRequest{Email: "other@example.com", Password: "hunter22"}); err == nil {
		t.Fatal("second registration must be rejected")
	}
}

func TestLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewAuthUsecase(userRepo, testConfig())
	uc.Register(&authdto.RegisterRequest{Email: "me@example.com", Password: "hunter22"})

	if _, err := uc.Login(&authdto.LoginRequest{Email: "me@example.com", Password: "hunter22"}); err != nil {
		t.Errorf("Login: %v", err)
	}
	if _, err := uc.Login(&authdto.LoginRequest{Email: "me@example.com", Password: "wrong"}); err == nil {
		t.Error("wrong password must be rejected")
	}
	if _, err := uc.Login(&authdto.LoginRequest{Email: "nobody@example.com", Password: "hunter22"}); err == nil {
		t.Error("unknown email must be rejected")
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewAuthUsecase(userRepo, testConfig())
	resp, err := uc.Register(&authdto.RegisterRequest{Email: "me@example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	refreshed, err := uc.RefreshToken(resp.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a fresh access token")
	}

	if _, err := uc.RefreshToken("not-a-jwt"); err == nil {
		t.Error("garbage refresh token must be rejected")
	}

	// A logged-out token no longer refreshes even though the JWT still
	// verifies.
	if err := uc.Logout(resp.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := uc.RefreshToken(resp.RefreshToken); err == nil {
		t.Error("revoked refresh token must be rejected")
	}
}

func TestValidateToken(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewAuthUsecase(userRepo, testConfig())
	resp, _ := uc.Register(&authdto.RegisterRequest{Email: "me@example.com", Password: "hunter22"})

	user, err := uc.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if user.Email != "me@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	other := NewAuthUsecase(userRepo, &config.Config{JWTSecret: "other-secret", JWTAccessExpiry: time.Minute, JWTRefreshExpiry: time.Hour})
	if _, err := other.ValidateToken(resp.AccessToken); err == nil {
		t.Error("token signed with a different secret must be rejected")
	}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
