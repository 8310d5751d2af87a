package pin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/logging"
)

// CodePrompter is the UI surface the gate drives: digit entry, transient
// feedback and the optional biometric offer. PromptPin returns
// common.ErrPromptCancelled when the user dismisses the pad.
type CodePrompter interface {
	PromptPin(ctx context.Context, title string) (string, error)
	Notify(ctx context.Context, message string)

	// OfferBiometric asks whether to use a biometric assertion instead of
	// digits. It is only called when a binding is configured.
	OfferBiometric(ctx context.Context) (bool, error)
}

// BiometricAsserter is the slice of the credential manager the gate needs.
type BiometricAsserter interface {
	Configured(ctx context.Context) (bool, error)
	Assert(ctx context.Context, reason string) error
}

// LockoutError aborts a gated action: the server has locked PIN verification
// and the action must not proceed.
type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("pin locked, retry after %s", e.RetryAfter)
	}
	return "pin locked"
}

// Gate wraps sensitive actions in a PIN check. The wrapped continuation runs
// only after the server confirms the PIN (or a biometric assertion stands in
// for it); on lockout, cancellation or any server error it never runs.
type Gate struct {
	svc       *Service
	prompter  CodePrompter
	biometric BiometricAsserter
	log       logging.Logger
}

func NewGate(svc *Service, prompter CodePrompter, asserter BiometricAsserter, log logging.Logger) *Gate {
	return &Gate{svc: svc, prompter: prompter, biometric: asserter, log: log}
}

// Require runs fn once the user has cleared the PIN check for actionLabel.
// An account with no PIN is routed through the mandatory setup flow first; a
// freshly created PIN counts as verified for this invocation.
func (g *Gate) Require(ctx context.Context, actionLabel string, fn func(ctx context.Context) error) error {
	isSet, err := g.svc.Status(ctx)
	if err != nil {
		return fmt.Errorf("checking pin status: %w", err)
	}

	if !isSet {
		if err := g.runSetup(ctx); err != nil {
			return err
		}
		return fn(ctx)
	}

	ok, err := g.tryBiometric(ctx, actionLabel)
	if err != nil {
		return err
	}
	if ok {
		return fn(ctx)
	}

	if err := g.verifyLoop(ctx, actionLabel); err != nil {
		return err
	}
	return fn(ctx)
}

// runSetup is the mandatory first-use flow: enter, then confirm. A mismatch
// restarts the confirm step only; the entered PIN stays.
func (g *Gate) runSetup(ctx context.Context) error {
	g.prompter.Notify(ctx, "Set a transaction PIN to continue")

	for {
		entered, err := g.prompter.PromptPin(ctx, "Create transaction PIN")
		if err != nil {
			return err
		}
		if !ValidFormat(entered) {
			g.prompter.Notify(ctx, "PIN must be 4 to 6 digits")
			continue
		}

		for {
			confirm, err := g.prompter.PromptPin(ctx, "Confirm transaction PIN")
			if err != nil {
				return err
			}
			if confirm != entered {
				g.prompter.Notify(ctx, "PINs do not match, try again")
				continue
			}
			return g.svc.Setup(ctx, entered, confirm)
		}
	}
}

// tryBiometric offers a biometric assertion when a binding is configured. A
// declined offer or a failed assertion falls back to digits; only the offer
// plumbing itself can abort the gate.
func (g *Gate) tryBiometric(ctx context.Context, actionLabel string) (bool, error) {
	configured, err := g.biometric.Configured(ctx)
	if err != nil || !configured {
		return false, err
	}

	accepted, err := g.prompter.OfferBiometric(ctx)
	if err != nil {
		return false, err
	}
	if !accepted {
		return false, nil
	}

	if err := g.biometric.Assert(ctx, "Confirm "+actionLabel); err != nil {
		g.log.Warn(ctx, "biometric assertion failed, falling back to pin", "error", err)
		return false, nil
	}
	return true, nil
}

func (g *Gate) verifyLoop(ctx context.Context, actionLabel string) error {
	for {
		entered, err := g.prompter.PromptPin(ctx, "Enter PIN to "+actionLabel)
		if err != nil {
			return err
		}
		if !ValidFormat(entered) {
			g.prompter.Notify(ctx, "PIN must be 4 to 6 digits")
			continue
		}

		err = g.svc.Verify(ctx, entered)
		if err == nil {
			return nil
		}

		var rejected *api.PinRejectedError
		if errors.As(err, &rejected) {
			g.prompter.Notify(ctx, fmt.Sprintf("Incorrect PIN, %d attempts remaining", rejected.RemainingAttempts))
			continue
		}

		var limited *api.RateLimitError
		if errors.As(err, &limited) {
			return &LockoutError{RetryAfter: limited.RetryAfter}
		}
		return err
	}
}
