package testutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
)

// TestPassphrase is the passphrase announced by the fake node
const TestPassphrase = "Test SDF Network ; September 2015"

// FakeNode is an in-process soroban RPC node serving ledger entries from memory
type FakeNode struct {
	t       testing.TB
	server  *httptest.Server
	mut     sync.Mutex
	entries map[string]string

	// Simulate answers simulateTransaction, receiving the base64 envelope
	Simulate func(tx string) (*data.SimulateTransactionResponse, error)
	// Sent collects the envelopes received by sendTransaction
	Sent []string
	// TxStatus is returned by getTransaction
	TxStatus string
}

// NewFakeNode starts a fake node, stopped with the test
func NewFakeNode(t testing.TB) *FakeNode {
	n := &FakeNode{
		t:        t,
		entries:  make(map[string]string),
		TxStatus: "SUCCESS",
	}

	bridge := jhttp.NewBridge(handler.Map{
		"getNetwork":          handler.New(n.getNetwork),
		"getLedgerEntries":    handler.New(n.getLedgerEntries),
		"simulateTransaction": handler.New(n.simulateTransaction),
		"sendTransaction":     handler.New(n.sendTransaction),
		"getTransaction":      handler.New(n.getTransaction),
	}, nil)
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bridge.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		n.server.Close()
		_ = bridge.Close()
	})

	return n
}

// URL returns the RPC endpoint of the node
func (n *FakeNode) URL() string {
	return n.server.URL
}

// Config returns an application config pointing at the node
func (n *FakeNode) Config() *data.AppConfig {
	return &data.AppConfig{
		RpcURL:            n.URL(),
		NetworkPassphrase: TestPassphrase,
		RequestTimeout:    "5s",
		ShutdownTimeout:   "1s",
	}
}

// PutEntry stores a ledger entry under its key
func (n *FakeNode) PutEntry(key xdr.LedgerKey, entry xdr.LedgerEntryData) {
	k, err := xdr.MarshalBase64(key)
	require.NoError(n.t, err)
	v, err := xdr.MarshalBase64(entry)
	require.NoError(n.t, err)

	n.mut.Lock()
	n.entries[k] = v
	n.mut.Unlock()
}

// DeployContract stores the instance and code entries of a wasm contract and returns its id
func (n *FakeNode) DeployContract(wasm []byte) string {
	wasmHash := xdr.Hash(sha256.Sum256(wasm))
	contractHash := xdr.Hash(sha256.Sum256(append([]byte("contract"), wasm...)))
	contractID, err := strkey.Encode(strkey.VersionByteContract, contractHash[:])
	require.NoError(n.t, err)

	address := xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &contractHash}
	instanceKey := xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance}
	n.PutEntry(xdr.LedgerKey{
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
					Executable: xdr.ContractExecutable{
						Type:     xdr.ContractExecutableTypeContractExecutableWasm,
						WasmHash: &wasmHash,
					},
				},
			},
		},
	})

	n.PutEntry(xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: wasmHash},
	}, xdr.LedgerEntryData{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.ContractCodeEntry{Hash: wasmHash, Code: wasm},
	})

	return contractID
}

// PutAccount stores an account entry with the given sequence number
func (n *FakeNode) PutAccount(address string, seq int64) {
	var accountID xdr.AccountId
	require.NoError(n.t, accountID.SetAddress(address))

	n.PutEntry(xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: accountID},
	}, xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeAccount,
		Account: &xdr.AccountEntry{
			AccountId:  accountID,
			Balance:    100_0000000,
			SeqNum:     xdr.SequenceNumber(seq),
			Thresholds: xdr.Thresholds{1, 0, 0, 0},
		},
	})
}

// UnknownContractID returns a well formed contract id the node knows nothing about
func UnknownContractID(t testing.TB) string {
	id, err := strkey.Encode(strkey.VersionByteContract, make([]byte, 32))
	require.NoError(t, err)
	return id
}

func (n *FakeNode) getNetwork(ctx context.Context) (*data.NetworkInfo, error) {
	return &data.NetworkInfo{Passphrase: TestPassphrase, ProtocolVersion: 21}, nil
}

func (n *FakeNode) getLedgerEntries(ctx context.Context, req data.GetLedgerEntriesRequest) (*data.GetLedgerEntriesResponse, error) {
	n.mut.Lock()
	defer n.mut.Unlock()

	res := &data.GetLedgerEntriesResponse{Entries: []data.LedgerEntryResult{}, LatestLedger: 1000}
	for _, key := range req.Keys {
		entry, ok := n.entries[key]
		if !ok {
			continue
		}
		res.Entries = append(res.Entries, data.LedgerEntryResult{Key: key, XDR: entry, LastModifiedLedgerSeq: 900})
	}
	return res, nil
}

func (n *FakeNode) simulateTransaction(ctx context.Context, req data.SimulateTransactionRequest) (*data.SimulateTransactionResponse, error) {
	if n.Simulate == nil {
		return nil, errors.New("simulation not available")
	}
	return n.Simulate(req.Transaction)
}

func (n *FakeNode) sendTransaction(ctx context.Context, req data.SendTransactionRequest) (*data.SendTransactionResponse, error) {
	n.mut.Lock()
	n.Sent = append(n.Sent, req.Transaction)
	n.mut.Unlock()

	return &data.SendTransactionResponse{Status: "PENDING", Hash: "f00d", LatestLedger: 1000}, nil
}

func (n *FakeNode) getTransaction(ctx context.Context, req data.GetTransactionRequest) (*data.GetTransactionResponse, error) {
	return &data.GetTransactionResponse{Status: n.TxStatus, Ledger: 1001, LatestLedger: 1001}, nil
}
