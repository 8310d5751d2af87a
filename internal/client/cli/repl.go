package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Status(ctx context.Context) error
	Login(ctx context.Context) error
	BiometricLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	SwitchAccount(ctx context.Context) error
	EnableBiometric(ctx context.Context) error
	DisableBiometric(ctx context.Context) error
	Buy(ctx context.Context) error
	SetupPin(ctx context.Context) error
	ChangePin(ctx context.Context) error
	ForgotPin(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Retry(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the PadiPay shell.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	Not logged in:
//	  - help           — show available commands
//	  - status         — show the current auth state
//	  - login          — password login
//	  - biologin       — biometric login
//	  - switch         — forget the saved account (full reset)
//	  - retry          — re-run the last action that failed on the network
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - help           — show available commands
//	  - status         — show the current auth state
//	  - buy            — PIN-gated airtime purchase demo
//	  - setpin         — create the transaction PIN
//	  - changepin      — change the transaction PIN
//	  - forgotpin      — recover a forgotten PIN via OTP
//	  - enable-bio     — enroll biometric login
//	  - disable-bio    — remove the biometric binding
//	  - delete-account — permanently delete the account
//	  - logout         — log out (keeps the biometric binding)
//	  - retry          — re-run the last action that failed on the network
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own guidance. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("padipay %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, buy, setpin, changepin, forgotpin, enable-bio, disable-bio, delete-account, logout, retry, exit")
			} else {
				printlnFn("Available commands: status, login, biologin, switch, retry, exit")
			}

		case "status":
			_ = a.Status(ctx)

		case "login":
			_ = a.Login(ctx)

		case "biologin":
			_ = a.BiometricLogin(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "switch":
			_ = a.SwitchAccount(ctx)

		case "enable-bio":
			_ = a.EnableBiometric(ctx)

		case "disable-bio":
			_ = a.DisableBiometric(ctx)

		case "buy":
			_ = a.Buy(ctx)

		case "setpin":
			_ = a.SetupPin(ctx)

		case "changepin":
			_ = a.ChangePin(ctx)

		case "forgotpin":
			_ = a.ForgotPin(ctx)

		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "retry":
			_ = a.Retry(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
