package biometric

import (
	"context"
	"fmt"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/client/securestore"
	"github.com/obiajulum/padipay/internal/client/settings"
	"github.com/obiajulum/padipay/internal/common"
	"github.com/obiajulum/padipay/internal/logging"
)

// credentialKeyPrefix namespaces secure-store entries per enrolled user.
const credentialKeyPrefix = "biometric_credentials_"

func credentialKey(userID string) string {
	return credentialKeyPrefix + userID
}

// CredentialManager owns the biometric credential binding: the secure-store
// entry plus the three settings flags. The binding counts as configured only
// when all legs exist and agree; any partial state is proactively torn down.
type CredentialManager struct {
	probe    CapabilityProbe
	prompter Prompter
	api      api.Client
	secure   securestore.Store
	settings *settings.Store
	log      logging.Logger
}

func NewCredentialManager(
	probe CapabilityProbe,
	prompter Prompter,
	apiClient api.Client,
	secure securestore.Store,
	st *settings.Store,
	log logging.Logger,
) *CredentialManager {
	return &CredentialManager{
		probe:    probe,
		prompter: prompter,
		api:      apiClient,
		secure:   secure,
		settings: st,
		log:      log,
	}
}

// Capability reports the device biometric state. Probe errors fail closed:
// the capability reads as unavailable and the caller falls back to password.
func (m *CredentialManager) Capability(ctx context.Context) Capability {
	c, err := m.probe.Probe(ctx)
	if err != nil {
		m.log.Warn(ctx, "biometric probe failed, treating as unavailable", "error", err)
		return Capability{}
	}
	return c
}

// Enable runs a fresh biometric prompt and, on success, obtains the opaque
// biometric token from the backend and stores it in the secure store. No
// writes happen when the prompt is cancelled or fails. Settings flags are NOT
// written here; call SaveCredentials once the caller has confirmed the
// "remember this account" step.
func (m *CredentialManager) Enable(ctx context.Context, userID string) error {
	c := m.Capability(ctx)
	if !c.Available || !c.Enrolled {
		return common.ErrBiometricUnavailable
	}

	if err := m.prompter.Authenticate(ctx, "Confirm your biometric to enable quick login"); err != nil {
		return err
	}

	deviceID, err := m.settings.DeviceID(ctx)
	if err != nil {
		return fmt.Errorf("resolving device id: %w", err)
	}

	bioToken, err := m.api.BiometricEnroll(ctx, userID, deviceID)
	if err != nil {
		return fmt.Errorf("enrolling biometric credential: %w", err)
	}

	if err := m.secure.Set(ctx, credentialKey(userID), []byte(bioToken)); err != nil {
		return fmt.Errorf("storing biometric credential: %w", err)
	}
	return nil
}

// SaveCredentials persists the settings flags that mark the binding as
// configured. Call only after Enable has succeeded.
func (m *CredentialManager) SaveCredentials(ctx context.Context, userID, email string) error {
	return m.settings.SaveBiometricBinding(ctx, userID, email)
}

// Configured derives the binding state from its three legs on every call; it
// is never cached. Partial state (some legs present, some missing) is cleared
// on the spot and reported as not configured.
func (m *CredentialManager) Configured(ctx context.Context) (bool, error) {
	enabled, err := m.settings.BiometricEnabled(ctx)
	if err != nil {
		return false, err
	}
	userID, err := m.settings.BiometricUserID(ctx)
	if err != nil {
		return false, err
	}

	if !enabled && userID == "" {
		return false, nil
	}

	if enabled && userID != "" {
		entry, err := m.secure.Get(ctx, credentialKey(userID))
		if err == nil && entry != nil {
			return true, nil
		}
		if err != nil {
			m.log.Warn(ctx, "secure biometric entry unreadable", "error", err)
		}
	}

	m.log.Warn(ctx, "partial biometric binding detected, clearing", "user_id", userID, "enabled", enabled)
	if err := m.clearBinding(ctx, userID); err != nil {
		return false, err
	}
	return false, nil
}

// AuthenticateForLogin runs the login biometric prompt and returns the stored
// opaque token. A missing stored token despite enabled flags fails closed:
// the binding is cleared and common.ErrBiometricNotEnrolled is returned so
// the caller falls back to password login.
func (m *CredentialManager) AuthenticateForLogin(ctx context.Context) (string, error) {
	configured, err := m.Configured(ctx)
	if err != nil {
		return "", err
	}
	if !configured {
		return "", common.ErrBiometricNotEnrolled
	}

	if err := m.prompter.Authenticate(ctx, "Log in to PadiPay"); err != nil {
		return "", err
	}

	userID, err := m.settings.BiometricUserID(ctx)
	if err != nil {
		return "", err
	}
	entry, err := m.secure.Get(ctx, credentialKey(userID))
	if err != nil || entry == nil {
		if clearErr := m.clearBinding(ctx, userID); clearErr != nil {
			m.log.Error(ctx, "failed to clear broken biometric binding", "error", clearErr)
		}
		return "", common.ErrBiometricNotEnrolled
	}
	return string(entry), nil
}

// Assert runs a biometric prompt for an in-app sensitive action (PIN-gate
// substitution). The binding must be configured.
func (m *CredentialManager) Assert(ctx context.Context, reason string) error {
	configured, err := m.Configured(ctx)
	if err != nil {
		return err
	}
	if !configured {
		return common.ErrBiometricNotEnrolled
	}
	return m.prompter.Authenticate(ctx, reason)
}

// Disable confirms with a biometric prompt, then tears the binding down. The
// settings flags are cleared even when the secure delete fails, so the store
// can never read as enabled while holding nothing.
func (m *CredentialManager) Disable(ctx context.Context) error {
	if err := m.prompter.Authenticate(ctx, "Confirm to disable biometric login"); err != nil {
		return err
	}

	userID, err := m.settings.BiometricUserID(ctx)
	if err != nil {
		return err
	}
	return m.clearBinding(ctx, userID)
}

// Forget tears the binding down without a confirming prompt. Used by the
// switch-account full reset, where the user has already chosen to walk away
// from the stored account.
func (m *CredentialManager) Forget(ctx context.Context) error {
	userID, err := m.settings.BiometricUserID(ctx)
	if err != nil {
		return err
	}
	return m.clearBinding(ctx, userID)
}

func (m *CredentialManager) clearBinding(ctx context.Context, userID string) error {
	var delErr error
	if userID != "" {
		delErr = m.secure.Delete(ctx, credentialKey(userID))
	}
	if err := m.settings.ClearBiometricBinding(ctx); err != nil {
		return fmt.Errorf("clearing biometric flags: %w", err)
	}
	if delErr != nil {
		return fmt.Errorf("deleting biometric credential: %w", delErr)
	}
	return nil
}
