package wallet

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type change struct {
	previous, next string
}

func TestSessionConnectDispatchesChange(t *testing.T) {
	session := NewSession(nil, zap.NewNop())

	var changes []change
	session.OnChange(func(previous, next string) {
		changes = append(changes, change{previous, next})
	})

	session.Connect("wallet-a")
	session.Connect("wallet-b")
	session.Disconnect()

	assert.Equal(t, []change{
		{"", "wallet-a"},
		{"wallet-a", "wallet-b"},
		{"wallet-b", ""},
	}, changes)
}

func TestSessionConnectSameAccountIsNoop(t *testing.T) {
	session := NewSession(nil, zap.NewNop())

	calls := 0
	session.OnChange(func(previous, next string) { calls++ })

	session.Connect("wallet-a")
	session.Connect("wallet-a")

	assert.Equal(t, 1, calls)

	account, connected := session.Account()
	assert.True(t, connected)
	assert.Equal(t, "wallet-a", account)
}

func TestSessionUnsubscribeStopsDispatch(t *testing.T) {
	session := NewSession(nil, zap.NewNop())

	calls := 0
	unsubscribe := session.OnChange(func(previous, next string) { calls++ })

	session.Connect("wallet-a")
	unsubscribe()
	session.Disconnect()

	assert.Equal(t, 1, calls)
}

func TestSignAndSubmit(t *testing.T) {
	signer := func(_ context.Context, encodedTxn string) (string, error) {
		return "sig:" + encodedTxn, nil
	}
	session := NewSession(signer, zap.NewNop())

	_, err := session.SignAndSubmit(context.Background(), "txn")
	require.Error(t, err, "signing without a connected account must fail")

	session.Connect("wallet-a")
	sig, err := session.SignAndSubmit(context.Background(), "txn")
	require.NoError(t, err)
	assert.Equal(t, "sig:txn", sig)
}

func TestSignAndSubmitWithoutSigner(t *testing.T) {
	session := NewSession(nil, zap.NewNop())
	session.Connect("wallet-a")

	_, err := session.SignAndSubmit(context.Background(), "txn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing capability")
}
