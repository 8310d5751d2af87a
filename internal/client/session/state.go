package session

// State is the auth surface the app should be showing. The controller owns
// all transitions; screens render whatever state it reports and never keep
// their own auth flags.
type State int

const (
	StateResolving State = iota
	StatePasswordForm
	StateBiometricPrompt
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StatePasswordForm:
		return "password_form"
	case StateBiometricPrompt:
		return "biometric_prompt"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}
