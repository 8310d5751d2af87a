// Package session is the auth state machine: it decides which surface to show
// on cold start and foreground resume, and runs the password, biometric,
// logout and switch-account transitions. Dual-store writes go through the
// token service so a half-written session can never reach Authenticated.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/client/biometric"
	"github.com/obiajulum/padipay/internal/client/settings"
	"github.com/obiajulum/padipay/internal/client/token"
	"github.com/obiajulum/padipay/internal/common"
	"github.com/obiajulum/padipay/internal/logging"
)

// DefaultProbeTimeout bounds the cold-start profile probe so a dead backend
// cannot hold the app on the splash screen.
const DefaultProbeTimeout = 5 * time.Second

// Resolution is the outcome of a cold start / resume evaluation.
type Resolution struct {
	State State

	// User is set when State is StateAuthenticated.
	User *api.User

	// MaskedEmail is set when State is StateBiometricPrompt, derived from the
	// saved email of the bound account.
	MaskedEmail string

	// AutoPrompt is false right after an explicit logout: the biometric
	// surface is shown but must wait for the user to tap it.
	AutoPrompt bool
}

// LoginOutcome reports a successful password login plus whether the app
// should offer biometric enrollment before entering.
type LoginOutcome struct {
	User api.User

	// OfferEnrollment is true when the device can do biometrics and no
	// binding is configured yet.
	OfferEnrollment bool
}

type Controller struct {
	api       api.Client
	tokens    *token.Service
	biometric *biometric.CredentialManager
	settings  *settings.Store
	log       logging.Logger

	validate     *validator.Validate
	probeTimeout time.Duration

	loginInFlight atomic.Bool
}

func NewController(
	apiClient api.Client,
	tokens *token.Service,
	manager *biometric.CredentialManager,
	st *settings.Store,
	log logging.Logger,
) *Controller {
	return &Controller{
		api:          apiClient,
		tokens:       tokens,
		biometric:    manager,
		settings:     st,
		log:          log,
		validate:     validator.New(),
		probeTimeout: DefaultProbeTimeout,
	}
}

// SetProbeTimeout overrides the cold-start probe bound. Zero or negative
// values are ignored.
func (c *Controller) SetProbeTimeout(d time.Duration) {
	if d > 0 {
		c.probeTimeout = d
	}
}

// Resolve evaluates the startup priority order:
//
//  1. no token anywhere -> password or biometric surface, no network;
//  2. token present -> bounded profile probe; success -> Authenticated;
//  3. any probe failure -> clear the token, keep biometric flags, fall
//     through to the biometric-or-password choice.
//
// An idle timeout counts as a probe failure: the stale token is cleared
// before the network is touched.
func (c *Controller) Resolve(ctx context.Context) (*Resolution, error) {
	loggedOut, err := c.settings.ConsumeUserLoggedOut(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading logout flag: %w", err)
	}

	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session token: %w", err)
	}
	if tok == "" {
		return c.loginSurface(ctx, !loggedOut)
	}

	timedOut, err := c.IdleTimedOut(ctx)
	if err != nil {
		return nil, err
	}
	if timedOut {
		c.log.Info(ctx, "session idle timeout reached, clearing token")
		if err := c.tokens.Clear(ctx); err != nil {
			return nil, err
		}
		return c.loginSurface(ctx, true)
	}

	pctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	user, err := c.api.Profile(pctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn(ctx, "session probe failed, clearing token", "error", err)
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		return c.loginSurface(ctx, true)
	}

	return &Resolution{State: StateAuthenticated, User: user}, nil
}

// loginSurface picks between the biometric prompt and the password form when
// no valid session exists.
func (c *Controller) loginSurface(ctx context.Context, autoPrompt bool) (*Resolution, error) {
	configured, err := c.biometric.Configured(ctx)
	if err != nil {
		return nil, err
	}
	if !configured {
		return &Resolution{State: StatePasswordForm}, nil
	}

	saved, err := c.settings.SavedEmail(ctx)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		State:       StateBiometricPrompt,
		MaskedEmail: MaskEmail(saved),
		AutoPrompt:  autoPrompt,
	}, nil
}

type credentials struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Login runs the password flow. Re-entrant submits are dropped with
// common.ErrBusy while a login is in flight. A storage inconsistency from the
// token service aborts the flow before the caller can navigate.
func (c *Controller) Login(ctx context.Context, email, password string) (*LoginOutcome, error) {
	if !c.loginInFlight.CompareAndSwap(false, true) {
		return nil, common.ErrBusy
	}
	defer c.loginInFlight.Store(false)

	if err := c.validate.Struct(credentials{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %s", common.ErrValidation, err)
	}

	res, err := c.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := c.tokens.SetSession(ctx, res.Token, res.User.ID, res.User.Email, res.User.Name); err != nil {
		return nil, err
	}

	offer, err := c.shouldOfferEnrollment(ctx)
	if err != nil {
		c.log.Warn(ctx, "enrollment offer check failed", "error", err)
		offer = false
	}
	return &LoginOutcome{User: res.User, OfferEnrollment: offer}, nil
}

func (c *Controller) shouldOfferEnrollment(ctx context.Context) (bool, error) {
	capability := c.biometric.Capability(ctx)
	if !capability.Available || !capability.Enrolled {
		return false, nil
	}
	configured, err := c.biometric.Configured(ctx)
	if err != nil {
		return false, err
	}
	return !configured, nil
}

// BiometricLogin chains the device prompt, the stored credential and the
// backend exchange. It shares the in-flight guard with Login, since the two
// flows are mutually exclusive. A backend rejection of the biometric token
// clears only the session token and returns common.ErrBiometricTokenRejected;
// the binding survives so the user can re-enable it after a password login.
func (c *Controller) BiometricLogin(ctx context.Context) (*LoginOutcome, error) {
	if !c.loginInFlight.CompareAndSwap(false, true) {
		return nil, common.ErrBusy
	}
	defer c.loginInFlight.Store(false)

	bioToken, err := c.biometric.AuthenticateForLogin(ctx)
	if err != nil {
		return nil, err
	}

	res, err := c.api.BiometricLogin(ctx, bioToken)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			c.log.Warn(ctx, "backend rejected biometric token", "code", apiErr.Code)
			if clearErr := c.tokens.Clear(ctx); clearErr != nil {
				return nil, clearErr
			}
			return nil, fmt.Errorf("%w: %s", common.ErrBiometricTokenRejected, apiErr.Message)
		}
		return nil, err
	}

	if err := c.tokens.SetSession(ctx, res.Token, res.User.ID, res.User.Email, res.User.Name); err != nil {
		return nil, err
	}
	return &LoginOutcome{User: res.User}, nil
}

// HandleAuthFailure runs the session-expiry transition for an authorization
// failure received mid-session: the stored token is destroyed, the biometric
// binding survives, and the next login surface is resolved. Callers match
// common.ErrUnauthorized on any authenticated call and route here instead of
// surfacing a raw alert.
func (c *Controller) HandleAuthFailure(ctx context.Context) (*Resolution, error) {
	c.log.Warn(ctx, "backend rejected the session token, clearing it")
	if err := c.tokens.Clear(ctx); err != nil {
		return nil, err
	}
	return c.loginSurface(ctx, true)
}

// Logout clears the session token and its mirror only. Biometric flags and
// the saved email survive so the next open can offer biometric re-entry; the
// transient logout flag suppresses the auto prompt once.
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	return c.settings.SetUserLoggedOut(ctx)
}

// SwitchAccount is the full reset: session token, mirror, biometric binding
// and saved email all go.
func (c *Controller) SwitchAccount(ctx context.Context) error {
	if err := c.tokens.Clear(ctx); err != nil {
		return err
	}
	return c.biometric.Forget(ctx)
}

// IdleTimedOut reports whether the idle-logout preference has elapsed since
// the last recorded activity. Disabled auto-logout, the "never" timeout and
// an absent activity stamp all read as not timed out.
func (c *Controller) IdleTimedOut(ctx context.Context) (bool, error) {
	enabled, err := c.settings.AutoLogoutEnabled(ctx)
	if err != nil {
		return false, err
	}
	if !enabled {
		return false, nil
	}

	d, never, err := c.settings.SessionTimeout(ctx)
	if err != nil {
		return false, err
	}
	if never {
		return false, nil
	}

	last, ok, err := c.settings.LastActivity(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return time.Since(last) > d, nil
}

// MaskEmail keeps the first three characters of the local part, replaces the
// rest with **** and keeps everything from '@' on.
func MaskEmail(email string) string {
	at := strings.Index(email, "@")
	if at < 0 {
		return email
	}
	local := email[:at]
	if len(local) > 3 {
		local = local[:3]
	}
	return local + "****" + email[at:]
}
