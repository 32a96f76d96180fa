package session

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/desertthunder/cinewave/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

// Verifier checks a credential pair.
type Verifier interface {
	Verify(identifier, secret string) bool
}

// Account is the single provisioned identity and its [Verifier].
//
// The identifier (email) must match exactly. The secret is checked against SecretHash (bcrypt) when
// set, otherwise compared with Secret in constant time.
type Account struct {
	ID         int
	Email      string
	Name       string
	Secret     string
	SecretHash string
}

var _ Verifier = Account{}

// AccountFromConfig builds the provisioned [Account] from the [account] config section.
func AccountFromConfig(cfg shared.AccountConfig) Account {
	return Account{
		ID:         cfg.ID,
		Email:      cfg.Email,
		Name:       cfg.Name,
		Secret:     cfg.Password,
		SecretHash: cfg.PasswordHash,
	}
}

func (a Account) Verify(identifier, secret string) bool {
	if a.Email == "" || identifier != a.Email {
		return false
	}

	if a.SecretHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.SecretHash), []byte(secret)) == nil
	}
	if a.Secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.Secret), []byte(secret)) == 1
}

// HashSecret returns a bcrypt hash suitable for the password_hash config key.
func HashSecret(secret string) (string, error) {
	if strings.TrimSpace(secret) == "" {
		return "", fmt.Errorf("%w: empty password", shared.ErrInvalidInput)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
