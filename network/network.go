package network

import (
	"context"
	"encoding/hex"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/jhttp"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

var log = logger.GetOrCreate("network")

var (
	// ErrEntryNotFound - the RPC node has no ledger entry for the requested key
	ErrEntryNotFound = errors.New("ledger entry not found")
	// ErrNotWasmContract - the contract is not backed by an uploaded wasm (e.g. a built-in asset contract)
	ErrNotWasmContract = errors.New("contract is not a wasm contract")
)

// NetworkManager - holds the required fields of a network manager
type NetworkManager struct {
	rpcURL     string
	passphrase string
	client     *jrpc2.Client
}

// NewNetworkManager - creates a new NetworkManager object talking to the configured RPC node
func NewNetworkManager(cfg *data.AppConfig) (*NetworkManager, error) {
	if cfg == nil {
		return nil, errors.New("nil app config")
	}
	if cfg.RpcURL == "" {
		return nil, errors.New("empty RPC URL")
	}

	channel := jhttp.NewChannel(cfg.RpcURL, nil)
	networkManager := &NetworkManager{
		rpcURL:     cfg.RpcURL,
		passphrase: cfg.NetworkPassphrase,
		client:     jrpc2.NewClient(channel, nil),
	}

	return networkManager, nil
}

// Passphrase - returns the network passphrase transactions are built for
func (nm *NetworkManager) Passphrase() string {
	return nm.passphrase
}

// RpcURL - returns the RPC endpoint
func (nm *NetworkManager) RpcURL() string {
	return nm.rpcURL
}

// Close - closes the RPC client
func (nm *NetworkManager) Close() error {
	return nm.client.Close()
}

// CheckNetwork - compares the configured passphrase with the one announced by the RPC node.
// A mismatch is only logged: the node may be unreachable at start-up and that is not fatal
func (nm *NetworkManager) CheckNetwork(ctx context.Context) {
	info, err := nm.GetNetwork(ctx)
	if err != nil {
		log.Warn("can not get network info from RPC node", "url", nm.rpcURL, "error", err)
		return
	}

	if info.Passphrase != nm.passphrase {
		log.Warn("network passphrase mismatch", "configured", nm.passphrase, "node", info.Passphrase)
		return
	}

	log.Info("connected to RPC node", "url", nm.rpcURL, "protocol", info.ProtocolVersion)
}

// GetNetwork - retrieves the network details from the RPC node
func (nm *NetworkManager) GetNetwork(ctx context.Context) (*data.NetworkInfo, error) {
	info := &data.NetworkInfo{}
	err := nm.client.CallResult(ctx, "getNetwork", nil, info)
	if err != nil {
		return nil, errors.Wrap(err, "getNetwork")
	}

	return info, nil
}

// GetLedgerEntries - retrieves the ledger entries for the provided keys. Entries the
// node does not know about are absent from the result
func (nm *NetworkManager) GetLedgerEntries(ctx context.Context, keys ...xdr.LedgerKey) ([]xdr.LedgerEntryData, error) {
	req := data.GetLedgerEntriesRequest{Keys: make([]string, 0, len(keys))}
	for _, key := range keys {
		b64, err := xdr.MarshalBase64(key)
		if err != nil {
			return nil, errors.Wrap(err, "encoding ledger key")
		}
		req.Keys = append(req.Keys, b64)
	}

	res := &data.GetLedgerEntriesResponse{}
	err := nm.client.CallResult(ctx, "getLedgerEntries", req, res)
	if err != nil {
		return nil, errors.Wrap(err, "getLedgerEntries")
	}

	entries := make([]xdr.LedgerEntryData, 0, len(res.Entries))
	for _, entry := range res.Entries {
		var entryData xdr.LedgerEntryData
		err = xdr.SafeUnmarshalBase64(entry.XDR, &entryData)
		if err != nil {
			return nil, errors.Wrap(err, "decoding ledger entry")
		}
		entries = append(entries, entryData)
	}

	return entries, nil
}

func (nm *NetworkManager) getLedgerEntry(ctx context.Context, key xdr.LedgerKey) (*xdr.LedgerEntryData, error) {
	entries, err := nm.GetLedgerEntries(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}

	return &entries[0], nil
}

// GetContractInstance - retrieves the instance entry of a deployed contract
func (nm *NetworkManager) GetContractInstance(ctx context.Context, contractID string) (*xdr.ScContractInstance, error) {
	address, err := ContractAddress(contractID)
	if err != nil {
		return nil, err
	}

	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   address,
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
	entry, err := nm.getLedgerEntry(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "contract instance %s", contractID)
	}

	if entry.ContractData == nil || entry.ContractData.Val.Instance == nil {
		return nil, errors.Errorf("contract instance %s: unexpected ledger entry type %v", contractID, entry.Type)
	}

	return entry.ContractData.Val.Instance, nil
}

// GetContractWasm - retrieves the wasm bytecode a contract is running
func (nm *NetworkManager) GetContractWasm(ctx context.Context, contractID string) ([]byte, error) {
	instance, err := nm.GetContractInstance(ctx, contractID)
	if err != nil {
		return nil, err
	}

	executable := instance.Executable
	if executable.Type != xdr.ContractExecutableTypeContractExecutableWasm || executable.WasmHash == nil {
		return nil, errors.Wrapf(ErrNotWasmContract, "contract %s", contractID)
	}

	return nm.GetWasmByHash(ctx, *executable.WasmHash)
}

// GetWasmByHash - retrieves an uploaded wasm by its hash
func (nm *NetworkManager) GetWasmByHash(ctx context.Context, hash xdr.Hash) ([]byte, error) {
	key := xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: hash},
	}
	entry, err := nm.getLedgerEntry(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "contract code %x", hash[:])
	}

	if entry.ContractCode == nil {
		return nil, errors.Errorf("contract code %x: unexpected ledger entry type %v", hash[:], entry.Type)
	}

	log.Trace("contract code retrieved", "hash", hex.EncodeToString(hash[:]), "size", len(entry.ContractCode.Code))

	return entry.ContractCode.Code, nil
}

// GetAccountSequence - retrieves the current sequence number of an account
func (nm *NetworkManager) GetAccountSequence(ctx context.Context, address string) (int64, error) {
	var accountID xdr.AccountId
	err := accountID.SetAddress(address)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid account %s", address)
	}

	key := xdr.LedgerKey{
		Type:    xdr.LedgerEntryTypeAccount,
		Account: &xdr.LedgerKeyAccount{AccountId: accountID},
	}
	entry, err := nm.getLedgerEntry(ctx, key)
	if err != nil {
		return 0, errors.Wrapf(err, "account %s", address)
	}

	if entry.Account == nil {
		return 0, errors.Errorf("account %s: unexpected ledger entry type %v", address, entry.Type)
	}

	return int64(entry.Account.SeqNum), nil
}

// SimulateTransaction - asks the RPC node to simulate a base64 encoded transaction envelope
func (nm *NetworkManager) SimulateTransaction(ctx context.Context, txEnvelope string) (*data.SimulateTransactionResponse, error) {
	res := &data.SimulateTransactionResponse{}
	err := nm.client.CallResult(ctx, "simulateTransaction", data.SimulateTransactionRequest{Transaction: txEnvelope}, res)
	if err != nil {
		return nil, errors.Wrap(err, "simulateTransaction")
	}

	return res, nil
}

// SendTransaction - submits a signed base64 encoded transaction envelope
func (nm *NetworkManager) SendTransaction(ctx context.Context, txEnvelope string) (*data.SendTransactionResponse, error) {
	res := &data.SendTransactionResponse{}
	err := nm.client.CallResult(ctx, "sendTransaction", data.SendTransactionRequest{Transaction: txEnvelope}, res)
	if err != nil {
		return nil, errors.Wrap(err, "sendTransaction")
	}

	return res, nil
}

// GetTransaction - retrieves the status of a submitted transaction
func (nm *NetworkManager) GetTransaction(ctx context.Context, hash string) (*data.GetTransactionResponse, error) {
	res := &data.GetTransactionResponse{}
	err := nm.client.CallResult(ctx, "getTransaction", data.GetTransactionRequest{Hash: hash}, res)
	if err != nil {
		return nil, errors.Wrap(err, "getTransaction")
	}

	return res, nil
}

// ContractAddress - decodes a contract strkey (C...) into a contract ScAddress
func ContractAddress(contractID string) (xdr.ScAddress, error) {
	if contractID == "" {
		return xdr.ScAddress{}, errors.New("empty contract id")
	}

	raw, err := strkey.Decode(strkey.VersionByteContract, contractID)
	if err != nil {
		return xdr.ScAddress{}, errors.Wrapf(err, "invalid contract id %s", contractID)
	}

	var hash xdr.Hash
	copy(hash[:], raw)

	return xdr.ScAddress{
		Type:       xdr.ScAddressTypeScAddressTypeContract,
		ContractId: &hash,
	}, nil
}
