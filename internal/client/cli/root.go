package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/obiajulum/padipay/internal/client/session"
)

func (a *App) getStatus() string {
	s := a.state.String()
	if a.user != nil {
		s = a.user.Email + " " + s
	}
	return "(" + s + ")"
}

// Root resolves the startup auth state the way a cold app start would, prints
// the resulting surface and hands control to the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Println("PadiPay shell (type 'help' for commands)")

	a.firstRunSetup(ctx)

	res, err := a.session.Resolve(ctx)
	if err != nil {
		a.log.Error(ctx, "session resolution failed", "error", err)
		a.state = session.StatePasswordForm
	} else {
		a.applyResolution(res)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}

// firstRunSetup records onboarding completion on the very first start.
func (a *App) firstRunSetup(ctx context.Context) {
	done, err := a.settings.InitialSetupComplete(ctx)
	if err != nil || done {
		return
	}
	fmt.Println("Welcome to PadiPay! Your data is stored under", a.config.DataDir)
	if err := a.settings.SetInitialSetupComplete(ctx); err != nil {
		a.log.Warn(ctx, "failed to record initial setup", "error", err)
	}
}

func (a *App) applyResolution(res *session.Resolution) {
	a.state = res.State
	a.user = res.User

	switch res.State {
	case session.StateAuthenticated:
		fmt.Printf("Welcome back, %s!\n", res.User.Name)
	case session.StateBiometricPrompt:
		fmt.Printf("Sign in as %s with biometrics ('biologin'), or 'switch' to use another account.\n", res.MaskedEmail)
	case session.StatePasswordForm:
		fmt.Println("Log in with your email and password ('login').")
	}
}
