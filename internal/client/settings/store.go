package settings

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/obiajulum/padipay/internal/dbx"
)

// Keys persisted in the settings store. Names are part of the on-device
// contract shared with earlier releases, so they stay as-is even where the
// casing is inconsistent.
const (
	KeyToken                = "token"
	KeyUserID               = "userId"
	KeyUserEmail            = "userEmail"
	KeyUserName             = "userName"
	KeySavedEmail           = "savedEmail"
	KeyBiometricEnabled     = "biometricEnabled"
	KeyBiometricUserID      = "biometric_user_id"
	KeyLastActivityTime     = "lastActivityTime"
	KeySessionTimeout       = "sessionTimeout"
	KeyAutoLogoutEnabled    = "autoLogoutEnabled"
	KeyInitialSetupComplete = "initialSetupComplete"
	KeyUserLoggedOut        = "user_logged_out"
	KeyDeviceID             = "device_id"
)

// TimeoutNever is the sessionTimeout sentinel for "no idle auto-logout".
const TimeoutNever = "never"

// DefaultSessionTimeout applies when the user has not chosen a preference.
const DefaultSessionTimeout = 30 * time.Minute

// Store is the typed facade over the settings repository. All multi-key
// updates go through a transaction so readers never observe a half-written
// group of flags.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo() Repository {
	return NewSQLiteRepository(s.db)
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	v, err := s.repo().Get(ctx, key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) setString(ctx context.Context, key, value string) error {
	return s.repo().Set(ctx, key, []byte(value))
}

func (s *Store) getBool(ctx context.Context, key string) (bool, error) {
	v, err := s.getString(ctx, key)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) setBool(ctx context.Context, key string, value bool) error {
	if value {
		return s.setString(ctx, key, "true")
	}
	return s.setString(ctx, key, "false")
}

// TokenMirror returns the plain-store copy of the session token, or "" when
// absent. The secure store is the source of truth; this copy exists for fast
// reads and as a fallback when the secure read fails.
func (s *Store) TokenMirror(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyToken)
}

// SetSessionMirror writes the token mirror and the derived user fields in one
// transaction and stamps the activity time.
func (s *Store) SetSessionMirror(ctx context.Context, token, userID, email, name string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		now := strconv.FormatInt(time.Now().UnixMilli(), 10)
		for k, v := range map[string]string{
			KeyToken:            token,
			KeyUserID:           userID,
			KeyUserEmail:        email,
			KeyUserName:         name,
			KeyLastActivityTime: now,
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearSessionMirror removes the token mirror and the derived user fields.
// Biometric flags and the saved email are deliberately untouched: logout must
// preserve the ability to log back in biometrically.
func (s *Store) ClearSessionMirror(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, k := range []string{KeyToken, KeyUserID, KeyUserEmail, KeyUserName, KeyLastActivityTime} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) UserID(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyUserID)
}

func (s *Store) UserEmail(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyUserEmail)
}

func (s *Store) UserName(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyUserName)
}

func (s *Store) SavedEmail(ctx context.Context) (string, error) {
	return s.getString(ctx, KeySavedEmail)
}

func (s *Store) BiometricEnabled(ctx context.Context) (bool, error) {
	return s.getBool(ctx, KeyBiometricEnabled)
}

func (s *Store) BiometricUserID(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyBiometricUserID)
}

// SaveBiometricBinding persists the three flags that mark a biometric binding
// as configured, in one transaction.
func (s *Store) SaveBiometricBinding(ctx context.Context, userID, email string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for k, v := range map[string]string{
			KeyBiometricEnabled: "true",
			KeyBiometricUserID:  userID,
			KeySavedEmail:       email,
		} {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearBiometricBinding removes the enabled flag, the bound user id and the
// saved email in one transaction.
func (s *Store) ClearBiometricBinding(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, k := range []string{KeyBiometricEnabled, KeyBiometricUserID, KeySavedEmail} {
			if err := repo.Delete(ctx, k); err != nil {
				return err
			}
		}
		return nil
	})
}

// LastActivity returns the last recorded activity time. ok is false when no
// activity has been recorded yet.
func (s *Store) LastActivity(ctx context.Context) (t time.Time, ok bool, err error) {
	v, err := s.getString(ctx, KeyLastActivityTime)
	if err != nil || v == "" {
		return time.Time{}, false, err
	}
	millis, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, nil // unparsable value is treated as absent
	}
	return time.UnixMilli(millis), true, nil
}

// TouchActivity stamps the activity time, used by the idle-logout check.
func (s *Store) TouchActivity(ctx context.Context, t time.Time) error {
	return s.setString(ctx, KeyLastActivityTime, strconv.FormatInt(t.UnixMilli(), 10))
}

// SessionTimeout returns the idle-logout preference. never is true when the
// user disabled idle logout entirely.
func (s *Store) SessionTimeout(ctx context.Context) (d time.Duration, never bool, err error) {
	v, err := s.getString(ctx, KeySessionTimeout)
	if err != nil {
		return 0, false, err
	}
	if v == "" {
		return DefaultSessionTimeout, false, nil
	}
	if v == TimeoutNever {
		return 0, true, nil
	}
	minutes, err := strconv.Atoi(v)
	if err != nil || minutes <= 0 {
		return DefaultSessionTimeout, false, nil
	}
	return time.Duration(minutes) * time.Minute, false, nil
}

func (s *Store) SetSessionTimeout(ctx context.Context, minutes int) error {
	return s.setString(ctx, KeySessionTimeout, strconv.Itoa(minutes))
}

func (s *Store) SetSessionTimeoutNever(ctx context.Context) error {
	return s.setString(ctx, KeySessionTimeout, TimeoutNever)
}

func (s *Store) AutoLogoutEnabled(ctx context.Context) (bool, error) {
	v, err := s.getString(ctx, KeyAutoLogoutEnabled)
	if err != nil {
		return false, err
	}
	// enabled unless explicitly turned off
	return v != "false", nil
}

func (s *Store) SetAutoLogoutEnabled(ctx context.Context, enabled bool) error {
	return s.setBool(ctx, KeyAutoLogoutEnabled, enabled)
}

func (s *Store) InitialSetupComplete(ctx context.Context) (bool, error) {
	return s.getBool(ctx, KeyInitialSetupComplete)
}

func (s *Store) SetInitialSetupComplete(ctx context.Context) error {
	return s.setBool(ctx, KeyInitialSetupComplete, true)
}

// SetUserLoggedOut records the transient post-logout flag that login surfaces
// read to suppress the session probe once.
func (s *Store) SetUserLoggedOut(ctx context.Context) error {
	return s.setBool(ctx, KeyUserLoggedOut, true)
}

// ConsumeUserLoggedOut reads and clears the transient post-logout flag.
func (s *Store) ConsumeUserLoggedOut(ctx context.Context) (bool, error) {
	v, err := s.getBool(ctx, KeyUserLoggedOut)
	if err != nil {
		return false, err
	}
	if v {
		if err := s.repo().Delete(ctx, KeyUserLoggedOut); err != nil {
			return false, err
		}
	}
	return v, nil
}

// Wipe removes every settings key, including the device id and preferences.
// Only account deletion goes this far; switch-account keeps per-install state.
func (s *Store) Wipe(ctx context.Context) error {
	return s.repo().Clear(ctx)
}

// DeviceID returns the per-install identifier, creating it on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	v, err := s.getString(ctx, KeyDeviceID)
	if err != nil {
		return "", err
	}
	if v != "" {
		return v, nil
	}
	id := uuid.NewString()
	if err := s.setString(ctx, KeyDeviceID, id); err != nil {
		return "", err
	}
	return id, nil
}
