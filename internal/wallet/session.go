package wallet

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"yield_dashboard/internal/app/port"
)

// Signer signs a prepared base64-encoded transaction and submits it,
// returning the signature. The actual signing capability is provided by the
// wallet plugin and injected here.
type Signer func(ctx context.Context, encodedTxn string) (string, error)

// Session tracks the currently connected wallet account and notifies
// listeners on connect, disconnect and account switch. It implements
// port.WalletAdapter.
type Session struct {
	mu        sync.Mutex
	account   string
	signer    Signer
	listeners map[int]func(previous, next string)
	nextID    int
	logger    *zap.Logger
}

// NewSession creates a wallet session with no account connected.
func NewSession(signer Signer, logger *zap.Logger) *Session {
	return &Session{
		signer:    signer,
		listeners: make(map[int]func(previous, next string)),
		logger:    logger.Named("WalletSession"),
	}
}

var _ port.WalletAdapter = (*Session)(nil)

// Account implements port.WalletAdapter.
func (s *Session) Account() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.account != ""
}

// Connect sets the connected account and dispatches the change. Connecting
// the already-connected account is a no-op.
func (s *Session) Connect(account string) {
	s.setAccount(account)
}

// Disconnect clears the connected account and dispatches the change.
func (s *Session) Disconnect() {
	s.setAccount("")
}

func (s *Session) setAccount(next string) {
	s.mu.Lock()
	previous := s.account
	if previous == next {
		s.mu.Unlock()
		return
	}
	s.account = next
	listeners := make([]func(previous, next string), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	s.logger.Info("Wallet account changed",
		zap.String("previous", previous),
		zap.String("next", next))

	// Listeners run synchronously relative to the change so cache
	// invalidation happens before anything renders under the new account.
	for _, l := range listeners {
		l(previous, next)
	}
}

// SignAndSubmit implements port.WalletAdapter.
func (s *Session) SignAndSubmit(ctx context.Context, encodedTxn string) (string, error) {
	if _, ok := s.Account(); !ok {
		return "", fmt.Errorf("no wallet connected")
	}
	if s.signer == nil {
		return "", fmt.Errorf("wallet has no signing capability")
	}
	return s.signer(ctx, encodedTxn)
}

// OnChange implements port.WalletAdapter.
func (s *Session) OnChange(listener func(previous, next string)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}
