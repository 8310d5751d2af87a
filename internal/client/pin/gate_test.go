package pin

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/common"
	"github.com/obiajulum/padipay/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---- fakes ----

type fakeAPI struct {
	api.Client

	pinSet    bool
	statusErr error

	setupErr    error
	setupCalls  int
	lastSetup   string
	verifyErrs  []error // consumed one per VerifyPin call; empty means success
	verifyCalls int
	lastVerify  string
}

func (f *fakeAPI) PinStatus(ctx context.Context) (bool, error) {
	return f.pinSet, f.statusErr
}

func (f *fakeAPI) SetupPin(ctx context.Context, pin, confirmPin string) error {
	f.setupCalls++
	f.lastSetup = pin
	return f.setupErr
}

func (f *fakeAPI) VerifyPin(ctx context.Context, pin string) error {
	f.verifyCalls++
	f.lastVerify = pin
	if len(f.verifyErrs) == 0 {
		return nil
	}
	err := f.verifyErrs[0]
	f.verifyErrs = f.verifyErrs[1:]
	return err
}

// scriptPrompter feeds a fixed sequence of pad entries, then cancels.
type scriptPrompter struct {
	pins       []string
	offers     []bool
	offerCalls int
	notices    []string
	titles     []string
}

func (p *scriptPrompter) PromptPin(ctx context.Context, title string) (string, error) {
	p.titles = append(p.titles, title)
	if len(p.pins) == 0 {
		return "", common.ErrPromptCancelled
	}
	pin := p.pins[0]
	p.pins = p.pins[1:]
	return pin, nil
}

func (p *scriptPrompter) Notify(ctx context.Context, message string) {
	p.notices = append(p.notices, message)
}

func (p *scriptPrompter) OfferBiometric(ctx context.Context) (bool, error) {
	p.offerCalls++
	if len(p.offers) == 0 {
		return false, nil
	}
	v := p.offers[0]
	p.offers = p.offers[1:]
	return v, nil
}

type fakeAsserter struct {
	configured bool
	assertErr  error
	asserts    int
}

func (f *fakeAsserter) Configured(ctx context.Context) (bool, error) {
	return f.configured, nil
}

func (f *fakeAsserter) Assert(ctx context.Context, reason string) error {
	f.asserts++
	return f.assertErr
}

type env struct {
	gate     *Gate
	apic     *fakeAPI
	prompter *scriptPrompter
	asserter *fakeAsserter

	actionRuns int
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		apic:     &fakeAPI{},
		prompter: &scriptPrompter{},
		asserter: &fakeAsserter{},
	}
	svc := NewService(e.apic, testLogger())
	e.gate = NewGate(svc, e.prompter, e.asserter, testLogger())
	return e
}

func (e *env) action(ctx context.Context) error {
	e.actionRuns++
	return nil
}

// ---- Service ----

func TestService_RejectsMalformedPinsOffline(t *testing.T) {
	ctx := context.Background()
	apic := &fakeAPI{}
	svc := NewService(apic, testLogger())

	assert.ErrorIs(t, svc.Setup(ctx, "12ab", "12ab"), common.ErrValidation)
	assert.ErrorIs(t, svc.Setup(ctx, "123", "123"), common.ErrValidation)
	assert.ErrorIs(t, svc.Setup(ctx, "1234", "4321"), common.ErrValidation)
	assert.ErrorIs(t, svc.Verify(ctx, "1234567"), common.ErrValidation)
	assert.ErrorIs(t, svc.Change(ctx, "1234", "56"), common.ErrValidation)

	assert.Zero(t, apic.setupCalls)
	assert.Zero(t, apic.verifyCalls)
}

// ---- Gate: setup flow ----

func TestRequire_UnsetPinForcesSetupBeforeAction(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = false
	// mismatch on first confirm restarts the confirm step only
	e.prompter.pins = []string{"1234", "9999", "1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))

	assert.Equal(t, 1, e.apic.setupCalls)
	assert.Equal(t, "1234", e.apic.lastSetup)
	assert.Equal(t, 1, e.actionRuns)
	assert.Equal(t, []string{
		"Create transaction PIN",
		"Confirm transaction PIN",
		"Confirm transaction PIN",
	}, e.prompter.titles)
}

func TestRequire_SetupCancelNeverRunsAction(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = false
	e.prompter.pins = []string{"1234"} // confirm step gets cancelled

	err := e.gate.Require(context.Background(), "buy airtime", e.action)
	assert.ErrorIs(t, err, common.ErrPromptCancelled)
	assert.Zero(t, e.apic.setupCalls)
	assert.Zero(t, e.actionRuns)
}

func TestRequire_MalformedSetupEntryRepromptsOffline(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = false
	e.prompter.pins = []string{"12", "1234", "1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Equal(t, 1, e.apic.setupCalls)
	assert.Contains(t, e.prompter.notices, "PIN must be 4 to 6 digits")
}

// ---- Gate: verify flow ----

func TestRequire_CorrectPinRunsActionOnce(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.prompter.pins = []string{"1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Equal(t, 1, e.apic.verifyCalls)
	assert.Equal(t, "1234", e.apic.lastVerify)
	assert.Equal(t, 1, e.actionRuns)
}

func TestRequire_WrongPinRetriesWithRemainingAttempts(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.apic.verifyErrs = []error{
		&api.PinRejectedError{RemainingAttempts: 2, Message: "wrong pin"},
	}
	e.prompter.pins = []string{"1111", "1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Equal(t, 2, e.apic.verifyCalls)
	assert.Equal(t, 1, e.actionRuns)
	assert.Contains(t, e.prompter.notices, "Incorrect PIN, 2 attempts remaining")
}

func TestRequire_LockoutAbortsWithoutRunningAction(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.apic.verifyErrs = []error{
		&api.RateLimitError{RetryAfter: 15 * time.Minute, Message: "locked"},
	}
	e.prompter.pins = []string{"1111"}

	err := e.gate.Require(context.Background(), "buy airtime", e.action)

	var lockout *LockoutError
	require.ErrorAs(t, err, &lockout)
	assert.Equal(t, 15*time.Minute, lockout.RetryAfter)
	assert.Zero(t, e.actionRuns, "continuation must never run after a lockout")
}

func TestRequire_PadCancelNeverRunsAction(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true

	err := e.gate.Require(context.Background(), "buy airtime", e.action)
	assert.ErrorIs(t, err, common.ErrPromptCancelled)
	assert.Zero(t, e.actionRuns)
}

func TestRequire_StatusFailureFailsClosed(t *testing.T) {
	e := newEnv(t)
	e.apic.statusErr = errors.New("backend down")

	err := e.gate.Require(context.Background(), "buy airtime", e.action)
	assert.Error(t, err)
	assert.Zero(t, e.actionRuns)
}

// ---- Gate: biometric substitution ----

func TestRequire_BiometricAssertionReplacesDigits(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.asserter.configured = true
	e.prompter.offers = []bool{true}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Equal(t, 1, e.asserter.asserts)
	assert.Zero(t, e.apic.verifyCalls)
	assert.Equal(t, 1, e.actionRuns)
	assert.Empty(t, e.prompter.titles, "no pad when the assertion stands in")
}

func TestRequire_DeclinedOfferFallsBackToDigits(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.asserter.configured = true
	e.prompter.offers = []bool{false}
	e.prompter.pins = []string{"1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Zero(t, e.asserter.asserts)
	assert.Equal(t, 1, e.apic.verifyCalls)
	assert.Equal(t, 1, e.actionRuns)
}

func TestRequire_FailedAssertionFallsBackToDigits(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.asserter.configured = true
	e.asserter.assertErr = common.ErrPromptCancelled
	e.prompter.offers = []bool{true}
	e.prompter.pins = []string{"1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Equal(t, 1, e.apic.verifyCalls)
	assert.Equal(t, 1, e.actionRuns)
}

func TestRequire_NoOfferWithoutBinding(t *testing.T) {
	e := newEnv(t)
	e.apic.pinSet = true
	e.asserter.configured = false
	e.prompter.pins = []string{"1234"}

	require.NoError(t, e.gate.Require(context.Background(), "buy airtime", e.action))
	assert.Zero(t, e.prompter.offerCalls, "OfferBiometric must not be consulted")
	assert.Equal(t, 1, e.actionRuns)
}
