// Package token owns the session-token lifecycle. There is at most one
// current session token on the device: the secure store holds the source of
// truth and the plain settings store carries a denormalized mirror for fast
// reads. Every write goes through this service so no call site can update one
// store without the other.
package token

import (
	"context"
	"fmt"

	"github.com/obiajulum/padipay/internal/client/securestore"
	"github.com/obiajulum/padipay/internal/client/settings"
	"github.com/obiajulum/padipay/internal/common"
	"github.com/obiajulum/padipay/internal/logging"
)

// secureTokenKey is the secure-store slot of the current session token.
const secureTokenKey = "session_token"

type Service struct {
	secure   securestore.Store
	settings *settings.Store
	log      logging.Logger
}

func NewService(secure securestore.Store, st *settings.Store, log logging.Logger) *Service {
	return &Service{secure: secure, settings: st, log: log}
}

// Get returns the current session token, or "" when there is none. A failing
// secure read falls back to the settings mirror; absence is a normal result
// and never an error.
func (s *Service) Get(ctx context.Context) (string, error) {
	v, err := s.secure.Get(ctx, secureTokenKey)
	if err == nil {
		return string(v), nil
	}

	s.log.Warn(ctx, "secure token read failed, falling back to mirror", "error", err)
	mirror, mErr := s.settings.TokenMirror(ctx)
	if mErr != nil {
		return "", fmt.Errorf("token unavailable in both stores: %w", mErr)
	}
	return mirror, nil
}

// SetSession stores a freshly issued token together with the derived user
// fields, then reads both stores back. A token that cannot be read back would
// strand the user on the loading screen at next start, so any empty read-back
// is ErrStorageInconsistency and the caller must abort the login flow.
func (s *Service) SetSession(ctx context.Context, tok, userID, email, name string) error {
	if tok == "" {
		return fmt.Errorf("refusing to store an empty session token")
	}

	if err := s.secure.Set(ctx, secureTokenKey, []byte(tok)); err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	if err := s.settings.SetSessionMirror(ctx, tok, userID, email, name); err != nil {
		return fmt.Errorf("mirroring session token: %w", err)
	}

	stored, err := s.secure.Get(ctx, secureTokenKey)
	if err != nil || string(stored) != tok {
		return fmt.Errorf("secure store read-back failed: %w", common.ErrStorageInconsistency)
	}
	mirror, err := s.settings.TokenMirror(ctx)
	if err != nil || mirror != tok {
		return fmt.Errorf("settings mirror read-back failed: %w", common.ErrStorageInconsistency)
	}
	return nil
}

// Clear removes the token from both stores along with the mirrored user
// fields. Clearing an already-clear token is not an error.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.secure.Delete(ctx, secureTokenKey); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	if err := s.settings.ClearSessionMirror(ctx); err != nil {
		return fmt.Errorf("clearing session mirror: %w", err)
	}
	return nil
}
