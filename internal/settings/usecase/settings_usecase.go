package usecase

import (
	"context"
	"strings"

	documentdomain "readerdash/internal/document/domain"
	settingsdomain "readerdash/internal/settings/domain"
	"readerdash/internal/settings/repository"
)

// SettingsUsecase owns the Readwise token. It is the sync engine's
// TokenSource; nothing else reads the raw token.
type SettingsUsecase interface {
	ReadwiseToken() (string, error)
	SetReadwiseToken(token string) error
	// TokenInfo reports whether a token is configured plus a masked preview.
	TokenInfo() (bool, string, error)
	TestToken(ctx context.Context) (bool, error)
}

// settingsUsecase implements SettingsUsecase
type settingsUsecase struct {
	settingRepo repository.SettingRepository
	provider    documentdomain.DocumentProvider
}

// NewSettingsUsecase creates a new instance of settingsUsecase
func NewSettingsUsecase(settingRepo repository.SettingRepository, provider documentdomain.DocumentProvider) SettingsUsecase {
	return &settingsUsecase{
		settingRepo: settingRepo,
		provider:    provider,
	}
}

func (u *settingsUsecase) ReadwiseToken() (string, error) {
	return u.settingRepo.Get(settingsdomain.KeyReadwiseToken)
}

func (u *settingsUsecase) SetReadwiseToken(token string) error {
	return u.settingRepo.Set(settingsdomain.KeyReadwiseToken, strings.TrimSpace(token))
}

func (u *settingsUsecase) TokenInfo() (bool, string, error) {
	token, err := u.ReadwiseToken()
	if err != nil {
		return false, "", err
	}
	if token == "" {
		return false, "", nil
	}
	return true, maskToken(token), nil
}

func (u *settingsUsecase) TestToken(ctx context.Context) (bool, error) {
	token, err := u.ReadwiseToken()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	return u.provider.ValidateToken(ctx, token), nil
}

// maskToken keeps just enough of the token to recognize it in the UI.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
