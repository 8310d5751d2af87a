package cli

import (
	"context"
	"fmt"
)

// EnableBiometric enrolls biometric login for the signed-in user.
func (a *App) EnableBiometric(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}
	if err := a.enrollBiometric(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	return nil
}

// enrollBiometric runs the two-step enrollment: obtain and store the
// credential, then persist the flags that mark the binding as configured.
func (a *App) enrollBiometric(ctx context.Context) error {
	if err := a.bio.Enable(ctx, a.user.ID); err != nil {
		return err
	}
	if err := a.bio.SaveCredentials(ctx, a.user.ID, a.user.Email); err != nil {
		return err
	}
	fmt.Println("Biometric login enabled.")
	return nil
}

// DisableBiometric removes the biometric binding after a confirming prompt.
func (a *App) DisableBiometric(ctx context.Context) error {
	if err := a.bio.Disable(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Println("Biometric login disabled.")
	return nil
}
