package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/obiajulum/padipay/internal/client/session"
	"github.com/obiajulum/padipay/internal/common"
)

// DeleteAccount permanently deletes the account after a typed confirmation
// and password check, then wipes everything local the way switch-account does.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in first.")
		return nil
	}

	ans, err := getSimpleText(a.reader, "Type DELETE to permanently delete your account", os.Stdout)
	if err != nil {
		return err
	}
	if ans != "DELETE" {
		fmt.Println("Aborted.")
		return nil
	}

	password, err := getSecret(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.api.DeleteAccount(ctx, string(password)); err != nil {
		a.report(ctx, err)
		return err
	}

	if err := a.session.SwitchAccount(ctx); err != nil {
		fmt.Println(describeError(err))
		return err
	}
	if err := a.settings.Wipe(ctx); err != nil {
		fmt.Println(describeError(err))
		return err
	}
	a.user = nil
	a.state = session.StatePasswordForm
	fmt.Println("Account deleted.")
	return nil
}
