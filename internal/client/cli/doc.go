// Package cli is the reference shell for the PadiPay auth core. It wires the
// stores, the API client, the session controller and the PIN gate together
// and drives them from a small REPL, standing in for the mobile UI.
package cli
