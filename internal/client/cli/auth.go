package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/client/session"
	"github.com/obiajulum/padipay/internal/common"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getSecret = GetSecret

// Status prints the current auth state, the signed-in user and the biometric
// binding.
func (a *App) Status(ctx context.Context) error {
	fmt.Println("State:", a.state)
	if line := a.currentUserLine(ctx); line != "" {
		fmt.Println(line)
	}

	configured, err := a.bio.Configured(ctx)
	if err != nil {
		return err
	}
	if configured {
		saved, err := a.settings.SavedEmail(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Biometric login: enabled for", session.MaskEmail(saved))
	} else {
		fmt.Println("Biometric login: not set up")
	}
	return nil
}

// currentUserLine renders the signed-in user from the settings mirror, the
// fast read path for session-derived fields.
func (a *App) currentUserLine(ctx context.Context) string {
	if !a.isLoggedIn() {
		return ""
	}
	name, err := a.settings.UserName(ctx)
	if err != nil {
		return ""
	}
	email, err := a.settings.UserEmail(ctx)
	if err != nil || (name == "" && email == "") {
		return ""
	}
	return fmt.Sprintf("User: %s <%s>", name, email)
}

// Login prompts for credentials and runs the password flow. On success it may
// offer biometric enrollment before entering the app.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getSecret(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	out, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		fmt.Println(describeError(err))
		if api.IsNetwork(err) {
			a.lastAction = a.Login
		}
		return err
	}

	a.user = &out.User
	a.state = session.StateAuthenticated
	a.lastAction = nil
	fmt.Printf("Welcome, %s!\n", out.User.Name)

	if out.OfferEnrollment {
		a.offerEnrollment(ctx)
	}
	return nil
}

// offerEnrollment runs the post-login biometric offer. Declining writes
// nothing.
func (a *App) offerEnrollment(ctx context.Context) {
	ans, err := getSimpleText(a.reader, "Enable biometric login for next time? (y/N)", os.Stdout)
	if err != nil || !strings.EqualFold(ans, "y") {
		return
	}
	if err := a.enrollBiometric(ctx); err != nil {
		fmt.Println(describeError(err))
	}
}

// BiometricLogin runs the stored-credential flow. A revoked credential drops
// the user to the password form with guidance rather than failing silently.
func (a *App) BiometricLogin(ctx context.Context) error {
	out, err := a.session.BiometricLogin(ctx)
	if err != nil {
		if errors.Is(err, common.ErrBiometricTokenRejected) {
			a.state = session.StatePasswordForm
			fmt.Println("Biometric sign-in was rejected by the server. Log in with your password; you can re-enable biometrics afterwards.")
			return err
		}
		fmt.Println(describeError(err))
		if api.IsNetwork(err) {
			a.lastAction = a.BiometricLogin
		}
		return err
	}

	a.user = &out.User
	a.state = session.StateAuthenticated
	a.lastAction = nil
	fmt.Printf("Welcome back, %s!\n", out.User.Name)
	return nil
}

// Logout ends the session but keeps the biometric binding so the next start
// can offer biometric re-entry.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		fmt.Println(describeError(err))
		return err
	}
	a.user = nil
	a.state = session.StatePasswordForm
	fmt.Println("Logged out.")
	return nil
}

// SwitchAccount forgets the saved account entirely: session, biometric
// binding and saved email.
func (a *App) SwitchAccount(ctx context.Context) error {
	if err := a.session.SwitchAccount(ctx); err != nil {
		fmt.Println(describeError(err))
		return err
	}
	a.user = nil
	a.state = session.StatePasswordForm
	fmt.Println("Account forgotten on this device.")
	return nil
}

// Retry re-invokes the last action that failed on the network.
func (a *App) Retry(ctx context.Context) error {
	if a.lastAction == nil {
		fmt.Println("Nothing to retry.")
		return nil
	}
	action := a.lastAction
	a.lastAction = nil
	return action(ctx)
}
