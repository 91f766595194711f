package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/hms/hms/internal/platform/auth"
)

// AccountService manages administrator accounts.
type AccountService struct {
	accounts AccountRepository
}

func NewAccountService(accounts AccountRepository) *AccountService {
	return &AccountService{accounts: accounts}
}

// Authenticate returns the account when password matches. Unknown usernames
// still pay for one bcrypt comparison.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	acct, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		auth.BurnPasswordCheck(password)
		return nil, err
	}
	if !auth.CheckPassword(acct.PasswordHash, password) {
		return nil, ErrAccountNotFound
	}
	return acct, nil
}

// Ensure creates the account or resets its password.
func (s *AccountService) Ensure(ctx context.Context, username, password string) (*Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.accounts.Upsert(ctx, username, hash)
}
