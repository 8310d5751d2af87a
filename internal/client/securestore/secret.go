package securestore

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/obiajulum/padipay/internal/common"
)

// LoadOrCreateSecret returns the per-install device secret stored at path,
// creating a fresh random one (0600) on first run. The secret never leaves
// the device; it only feeds the secure-store key derivation.
func LoadOrCreateSecret(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		secret, err := hex.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("corrupt device secret at %s: %w", path, err)
		}
		return secret, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading device secret: %w", err)
	}

	s, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("generating device secret: %w", err)
	}
	if err := os.WriteFile(path, []byte(s), 0600); err != nil {
		return nil, fmt.Errorf("writing device secret: %w", err)
	}
	return hex.DecodeString(s)
}
