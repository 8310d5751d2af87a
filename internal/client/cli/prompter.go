package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/obiajulum/padipay/internal/common"
)

// terminalPrompter simulates the OS biometric prompt and the PIN pad on a
// terminal. It satisfies both biometric.Prompter and pin.CodePrompter.
type terminalPrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func (p *terminalPrompter) Authenticate(ctx context.Context, reason string) error {
	ans, err := GetSimpleText(p.reader,
		fmt.Sprintf("[biometric] %s (press Enter to confirm, anything else cancels)", reason), p.out)
	if err != nil {
		return err
	}
	if ans != "" {
		return common.ErrPromptCancelled
	}
	return nil
}

func (p *terminalPrompter) PromptPin(ctx context.Context, title string) (string, error) {
	code, err := GetSecret(p.out, title+" (empty cancels)")
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(code)
	if len(code) == 0 {
		return "", common.ErrPromptCancelled
	}
	return string(code), nil
}

func (p *terminalPrompter) Notify(ctx context.Context, message string) {
	fmt.Fprintln(p.out, message)
}

func (p *terminalPrompter) OfferBiometric(ctx context.Context) (bool, error) {
	ans, err := GetSimpleText(p.reader, "Use biometric instead of your PIN? (y/N)", p.out)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(ans, "y"), nil
}
