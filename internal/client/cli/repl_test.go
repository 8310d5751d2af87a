package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Status(ctx context.Context) error {
	return f.record("status")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) BiometricLogin(ctx context.Context) error {
	f.loggedIn = true
	return f.record("biologin")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) SwitchAccount(ctx context.Context) error {
	return f.record("switch")
}
func (f *fakeExec) EnableBiometric(ctx context.Context) error {
	return f.record("enable-bio")
}
func (f *fakeExec) DisableBiometric(ctx context.Context) error {
	return f.record("disable-bio")
}
func (f *fakeExec) Buy(ctx context.Context) error {
	return f.record("buy")
}
func (f *fakeExec) SetupPin(ctx context.Context) error {
	return f.record("setpin")
}
func (f *fakeExec) ChangePin(ctx context.Context) error {
	return f.record("changepin")
}
func (f *fakeExec) ForgotPin(ctx context.Context) error {
	return f.record("forgotpin")
}
func (f *fakeExec) DeleteAccount(ctx context.Context) error {
	return f.record("delete-account")
}
func (f *fakeExec) Retry(ctx context.Context) error {
	return f.record("retry")
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"status",
		"login",
		"help",
		"buy",
		"setpin",
		"enable-bio",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"status", "login", "buy", "setpin", "enable-bio", "logout"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_EmptyLinesAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("\n\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
