package port

import "context"

// WalletAdapter is the wallet capability: the currently connected account,
// transaction signing, and connection-state change notifications.
type WalletAdapter interface {
	// Account returns the connected account's public key encoding, or
	// ok=false when no wallet is connected.
	Account() (account string, ok bool)

	// SignAndSubmit signs a prepared base64-encoded transaction and submits
	// it, returning the resulting signature.
	SignAndSubmit(ctx context.Context, encodedTxn string) (signature string, err error)

	// OnChange registers a listener invoked on connect, disconnect and
	// account switch. The returned func unsubscribes.
	OnChange(listener func(previous, next string)) (unsubscribe func())
}
