package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/common"
)

// Buy is the PIN-gated demo action: a ₦500 airtime purchase that only goes
// through once the gate clears it.
func (a *App) Buy(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}

	err := a.gate.Require(ctx, "buy ₦500 airtime", func(ctx context.Context) error {
		fmt.Println("₦500 airtime purchase confirmed.")
		return nil
	})
	if err != nil {
		a.report(ctx, err)
		if api.IsNetwork(err) {
			a.lastAction = a.Buy
		}
		return err
	}
	return nil
}

// SetupPin creates the transaction PIN outside of a gated action.
func (a *App) SetupPin(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}

	code, err := getSecret(os.Stdout, "New PIN (4-6 digits)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(code)

	confirm, err := getSecret(os.Stdout, "Confirm PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.pins.Setup(ctx, string(code), string(confirm)); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Println("Transaction PIN set.")
	return nil
}

// ForgotPin runs PIN recovery: request an OTP, verify it, set a new PIN with
// the returned reset token.
func (a *App) ForgotPin(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}

	if err := a.pins.RequestReset(ctx); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Println("A reset code has been sent to you.")

	otp, err := getSimpleText(a.reader, "Enter the reset code", os.Stdout)
	if err != nil {
		return err
	}
	resetToken, err := a.pins.VerifyReset(ctx, otp)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	next, err := getSecret(os.Stdout, "New PIN (4-6 digits)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.pins.CompleteReset(ctx, resetToken, string(next)); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Println("Transaction PIN reset.")
	return nil
}

// ChangePin replaces the transaction PIN.
func (a *App) ChangePin(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}

	current, err := getSecret(os.Stdout, "Current PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(current)

	next, err := getSecret(os.Stdout, "New PIN (4-6 digits)")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(next)

	if err := a.pins.Change(ctx, string(current), string(next)); err != nil {
		a.report(ctx, err)
		return err
	}
	fmt.Println("Transaction PIN changed.")
	return nil
}
