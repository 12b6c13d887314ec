package invoke

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/network"
	"github.com/silence48/new-soroban-fiddle/testutil"
	"github.com/silence48/new-soroban-fiddle/wallet"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var balanceFn = &data.FunctionDescriptor{
	Name:    "balance",
	Inputs:  []data.Param{{Name: "id", Type: "Address"}},
	Outputs: []data.Param{{Name: "I128", Type: "I128"}},
}

var decimalsFn = &data.FunctionDescriptor{
	Name:    "decimals",
	Inputs:  []data.Param{},
	Outputs: []data.Param{{Name: "U32", Type: "U32"}},
}

type invokerFixture struct {
	node     *testutil.FakeNode
	invoker  *Invoker
	contract string
	calls    []string
}

func newInvokerFixture(t *testing.T, signer *wallet.SecretKey) *invokerFixture {
	f := &invokerFixture{
		node:     testutil.NewFakeNode(t),
		contract: testutil.UnknownContractID(t),
	}

	nm, err := network.NewNetworkManager(f.node.Config())
	require.NoError(t, err)
	t.Cleanup(func() { _ = nm.Close() })

	f.invoker, err = NewInvoker(nm, signer)
	require.NoError(t, err)
	f.invoker.pollInterval = time.Millisecond

	sorobanData, err := xdr.MarshalBase64(xdr.SorobanTransactionData{
		Resources: xdr.SorobanResources{Instructions: 1000},
	})
	require.NoError(t, err)

	f.node.Simulate = func(tx string) (*data.SimulateTransactionResponse, error) {
		var env xdr.TransactionEnvelope
		err := xdr.SafeUnmarshalBase64(tx, &env)
		if err != nil {
			return nil, err
		}
		ops := env.Operations()
		if len(ops) != 1 || ops[0].Body.InvokeHostFunctionOp == nil {
			return nil, errors.New("expected one invoke operation")
		}
		call := ops[0].Body.InvokeHostFunctionOp.HostFunction.InvokeContract
		f.calls = append(f.calls, string(call.FunctionName))

		var retval xdr.ScVal
		switch call.FunctionName {
		case "balance":
			retval, err = ParseArg("I128", "1000")
		case "decimals":
			retval, err = ParseArg("U32", "7")
		default:
			return &data.SimulateTransactionResponse{Error: "HostError: function not found"}, nil
		}
		if err != nil {
			return nil, err
		}
		raw, err := xdr.MarshalBase64(retval)
		if err != nil {
			return nil, err
		}

		return &data.SimulateTransactionResponse{
			TransactionData: sorobanData,
			MinResourceFee:  "5000",
			Results:         []data.SimulateHostFunctionResult{{XDR: raw}},
			LatestLedger:    1000,
		}, nil
	}

	return f
}

func TestSimulateWithPublicKey(t *testing.T) {
	f := newInvokerFixture(t, nil)
	user := keypair.MustRandom().Address()
	f.node.PutAccount(user, 41)
	keys, err := wallet.NewStaticKey(user)
	require.NoError(t, err)

	res, err := f.invoker.Simulate(context.Background(), f.contract, balanceFn, map[string]string{"id": user}, keys)
	require.NoError(t, err)
	assert.Equal(t, "balance", res.Function)
	assert.Equal(t, "1000", res.Value)
	assert.NotEmpty(t, res.Raw)
	assert.Equal(t, []string{"balance"}, f.calls)
	assert.Empty(t, f.node.Sent)
}

func TestRead(t *testing.T) {
	f := newInvokerFixture(t, nil)
	user := keypair.MustRandom().Address()
	f.node.PutAccount(user, 1)
	keys, err := wallet.NewStaticKey(user)
	require.NoError(t, err)

	res, err := f.invoker.Read(context.Background(), f.contract, decimalsFn, keys)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), res.Value)
}

func TestSimulateErrors(t *testing.T) {
	f := newInvokerFixture(t, nil)
	user := keypair.MustRandom().Address()
	f.node.PutAccount(user, 1)
	keys, err := wallet.NewStaticKey(user)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.invoker.Read(ctx, f.contract, decimalsFn, nil)
	var invErr *InvocationError
	require.True(t, errors.As(err, &invErr))
	assert.Equal(t, "decimals", invErr.Function)
	assert.True(t, errors.Is(err, errNoKey))

	_, err = f.invoker.Simulate(ctx, f.contract, balanceFn, map[string]string{}, keys)
	assert.Regexp(t, "missing argument id", err)

	_, err = f.invoker.Simulate(ctx, f.contract, &data.FunctionDescriptor{Name: "mint"}, nil, keys)
	assert.Regexp(t, "simulation error: HostError", err)

	stranger, err := wallet.NewStaticKey(keypair.MustRandom().Address())
	require.NoError(t, err)
	_, err = f.invoker.Read(ctx, f.contract, decimalsFn, stranger)
	assert.True(t, errors.Is(err, network.ErrEntryNotFound))
}

func TestInvoke(t *testing.T) {
	signer, err := wallet.NewSecretKey(keypair.MustRandom().Seed())
	require.NoError(t, err)
	f := newInvokerFixture(t, signer)
	f.node.PutAccount(signer.KeyPair().Address(), 10)
	assert.True(t, f.invoker.CanInvoke())

	res, err := f.invoker.Invoke(context.Background(), f.contract, decimalsFn, nil)
	require.NoError(t, err)
	assert.Equal(t, "f00d", res.Hash)
	assert.Equal(t, "SUCCESS", res.Status)
	assert.Equal(t, uint32(1001), res.Ledger)
	require.Len(t, f.node.Sent, 1)

	var env xdr.TransactionEnvelope
	require.NoError(t, xdr.SafeUnmarshalBase64(f.node.Sent[0], &env))
	require.NotNil(t, env.V1)
	assert.Len(t, env.V1.Signatures, 1)
	assert.Equal(t, xdr.SequenceNumber(11), env.V1.Tx.SeqNum)
	assert.GreaterOrEqual(t, uint32(env.V1.Tx.Fee), uint32(100+5000))
	assert.NotNil(t, env.V1.Tx.Ext.SorobanData)
}

func TestInvokeFailures(t *testing.T) {
	f := newInvokerFixture(t, nil)
	assert.False(t, f.invoker.CanInvoke())
	_, err := f.invoker.Invoke(context.Background(), f.contract, decimalsFn, nil)
	assert.Regexp(t, "no secret key configured", err)

	signer, err := wallet.NewSecretKey(keypair.MustRandom().Seed())
	require.NoError(t, err)
	f = newInvokerFixture(t, signer)
	f.node.PutAccount(signer.KeyPair().Address(), 10)
	f.node.TxStatus = "FAILED"

	res, err := f.invoker.Invoke(context.Background(), f.contract, decimalsFn, nil)
	assert.Regexp(t, "transaction f00d failed", err)
	require.NotNil(t, res)
	assert.Equal(t, "FAILED", res.Status)
}

func TestNewInvokerNilNode(t *testing.T) {
	_, err := NewInvoker(nil, nil)
	assert.Error(t, err)
}
