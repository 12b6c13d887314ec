package network

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/silence48/new-soroban-fiddle/testutil"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNetworkManager(t *testing.T) (*NetworkManager, *testutil.FakeNode) {
	node := testutil.NewFakeNode(t)
	nm, err := NewNetworkManager(node.Config())
	require.NoError(t, err)
	t.Cleanup(func() { _ = nm.Close() })

	return nm, node
}

func TestGetNetwork(t *testing.T) {
	nm, node := newTestNetworkManager(t)

	info, err := nm.GetNetwork(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutil.TestPassphrase, info.Passphrase)
	assert.Equal(t, testutil.TestPassphrase, nm.Passphrase())
	assert.Equal(t, node.URL(), nm.RpcURL())

	nm.CheckNetwork(context.Background())
}

func TestGetContractWasm(t *testing.T) {
	nm, node := newTestNetworkManager(t)
	wasm := testutil.Wasm(testutil.SpecSection(t, testutil.TokenSpec()...))
	contractID := node.DeployContract(wasm)
	ctx := context.Background()

	instance, err := nm.GetContractInstance(ctx, contractID)
	require.NoError(t, err)
	require.NotNil(t, instance.Executable.WasmHash)
	assert.Equal(t, xdr.Hash(sha256.Sum256(wasm)), *instance.Executable.WasmHash)

	code, err := nm.GetContractWasm(ctx, contractID)
	require.NoError(t, err)
	assert.Equal(t, wasm, code)

	_, err = nm.GetContractWasm(ctx, testutil.UnknownContractID(t))
	assert.True(t, errors.Is(err, ErrEntryNotFound))
}

func TestGetContractWasmBuiltinContract(t *testing.T) {
	nm, node := newTestNetworkManager(t)
	contractID := testutil.UnknownContractID(t)
	address, err := ContractAddress(contractID)
	require.NoError(t, err)

	instanceKey := xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance}
	node.PutEntry(xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   address,
			Key:        instanceKey,
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}, xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract:   address,
			Key:        instanceKey,
			Durability: xdr.ContractDataDurabilityPersistent,
			Val: xdr.ScVal{
				Type: xdr.ScValTypeScvContractInstance,
				Instance: &xdr.ScContractInstance{
					Executable: xdr.ContractExecutable{Type: xdr.ContractExecutableTypeContractExecutableStellarAsset},
				},
			},
		},
	})

	_, err = nm.GetContractWasm(context.Background(), contractID)
	assert.True(t, errors.Is(err, ErrNotWasmContract))
}

func TestGetAccountSequence(t *testing.T) {
	nm, node := newTestNetworkManager(t)
	address := keypair.MustRandom().Address()
	node.PutAccount(address, 1234)
	ctx := context.Background()

	seq, err := nm.GetAccountSequence(ctx, address)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), seq)

	_, err = nm.GetAccountSequence(ctx, keypair.MustRandom().Address())
	assert.True(t, errors.Is(err, ErrEntryNotFound))

	_, err = nm.GetAccountSequence(ctx, "GNOPE")
	assert.Regexp(t, "invalid account", err)
}

func TestContractAddress(t *testing.T) {
	contractID := testutil.UnknownContractID(t)
	address, err := ContractAddress(contractID)
	require.NoError(t, err)
	assert.Equal(t, xdr.ScAddressTypeScAddressTypeContract, address.Type)

	_, err = ContractAddress("")
	assert.Regexp(t, "empty contract id", err)

	account := keypair.MustRandom().Address()
	_, err = ContractAddress(account)
	assert.Regexp(t, "invalid contract id", err)

	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	require.NoError(t, err)
	assert.Equal(t, raw, address.ContractId[:])
}

func TestNewNetworkManagerErrors(t *testing.T) {
	_, err := NewNetworkManager(nil)
	assert.Error(t, err)
}
