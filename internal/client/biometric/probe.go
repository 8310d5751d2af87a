// Package biometric binds a device biometric unlock to a backend-issued
// opaque credential token, enabling passwordless login. The OS biometric
// subsystem is reached through the CapabilityProbe and Prompter interfaces;
// the rest of the package is the credential bookkeeping around them.
package biometric

import "context"

// Modality is the biometric type reported by the device.
type Modality string

const (
	ModalityFingerprint Modality = "fingerprint"
	ModalityFace        Modality = "face"
)

// Capability describes the device biometric state. Available is only true
// when hardware is present AND at least one biometric is enrolled; the UI
// must never show a biometric affordance otherwise.
type Capability struct {
	Available bool
	Enrolled  bool
	Type      Modality
}

// CapabilityProbe queries the OS biometric subsystem. Read-only.
type CapabilityProbe interface {
	Probe(ctx context.Context) (Capability, error)
}

// Prompter shows the OS biometric prompt with the given reason. It returns
// nil on a successful assertion, common.ErrPromptCancelled when the user
// dismisses the prompt, and any other error for sensor failures.
type Prompter interface {
	Authenticate(ctx context.Context, reason string) error
}

// StaticProbe is a fixed-capability probe, used where the platform layer
// injects the device state once (and in tests).
type StaticProbe struct {
	Capability Capability
}

func (p StaticProbe) Probe(ctx context.Context) (Capability, error) {
	return p.Capability, nil
}
