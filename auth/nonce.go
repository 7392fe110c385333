package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"Foresight/cache"

	"github.com/google/uuid"
)

const nonceTTL = 5 * time.Minute

var ErrNonceExpired = errors.New("nonce expired or never issued")

func nonceKey(wallet string) string {
	return "login_nonce:" + strings.ToLower(wallet)
}

// IssueNonce creates the one-time message a wallet must sign to log in.
func IssueNonce(ctx context.Context, wallet string) (string, error) {
	nonce := fmt.Sprintf("Sign in to Foresight\nNonce: %s", uuid.New().String())
	if err := cache.Set(ctx, nonceKey(wallet), []byte(nonce), nonceTTL); err != nil {
		return "", err
	}
	return nonce, nil
}

// ConsumeNonce returns the outstanding nonce for a wallet and invalidates it,
// so a captured signature cannot be replayed.
func ConsumeNonce(ctx context.Context, wallet string) (string, error) {
	nonce, err := cache.Get(ctx, nonceKey(wallet))
	if err != nil {
		return "", err
	}
	if nonce == "" {
		return "", ErrNonceExpired
	}
	if err := cache.Delete(ctx, nonceKey(wallet)); err != nil {
		return "", err
	}
	return nonce, nil
}
