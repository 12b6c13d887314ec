package invoke

import (
	"context"
	"strconv"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/network"
	"github.com/silence48/new-soroban-fiddle/wallet"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

var log = logger.GetOrCreate("invoke")

const (
	txTimeoutInSec      = 30
	defaultPollInterval = time.Second

	statusError         = "ERROR"
	statusTryAgainLater = "TRY_AGAIN_LATER"
	statusNotFound      = "NOT_FOUND"
	statusFailed        = "FAILED"
)

var errNoKey = errors.New("no public key: connect a wallet or submit a secret key")

// Node - the RPC operations the invoker relies on
type Node interface {
	Passphrase() string
	GetAccountSequence(ctx context.Context, address string) (int64, error)
	SimulateTransaction(ctx context.Context, txEnvelope string) (*data.SimulateTransactionResponse, error)
	SendTransaction(ctx context.Context, txEnvelope string) (*data.SendTransactionResponse, error)
	GetTransaction(ctx context.Context, hash string) (*data.GetTransactionResponse, error)
}

// Invoker - reads, simulates and invokes contract functions
type Invoker struct {
	node         Node
	signer       *wallet.SecretKey
	pollInterval time.Duration
}

// NewInvoker - creates a new Invoker object. The signer is optional: without it
// functions can only be read and simulated
func NewInvoker(node Node, signer *wallet.SecretKey) (*Invoker, error) {
	if node == nil {
		return nil, errors.New("nil node")
	}

	return &Invoker{
		node:         node,
		signer:       signer,
		pollInterval: defaultPollInterval,
	}, nil
}

// CanInvoke - returns true if a secret key is configured for signing
func (inv *Invoker) CanInvoke() bool {
	return inv.signer != nil
}

// Read - simulates a call to a function taking no arguments
func (inv *Invoker) Read(ctx context.Context, contractID string, fn *data.FunctionDescriptor, keys wallet.KeySource) (*data.CallResult, error) {
	return inv.Simulate(ctx, contractID, fn, nil, keys)
}

// Simulate - simulates a call to a function and returns the decoded return value.
// Nothing is submitted to the network
func (inv *Invoker) Simulate(ctx context.Context, contractID string, fn *data.FunctionDescriptor, values map[string]string, keys wallet.KeySource) (*data.CallResult, error) {
	source, err := inv.sourceAccount(ctx, keys)
	if err != nil {
		return nil, &InvocationError{Function: fn.Name, Err: err}
	}

	op, err := invokeOperation(contractID, fn, values, source)
	if err != nil {
		return nil, &InvocationError{Function: fn.Name, Err: err}
	}

	sim, err := inv.simulate(ctx, source, op)
	if err != nil {
		return nil, &InvocationError{Function: fn.Name, Err: err}
	}

	result, err := callResult(fn.Name, sim)
	if err != nil {
		return nil, &InvocationError{Function: fn.Name, Err: err}
	}

	log.Debug("function simulated", "contract", contractID, "function", fn.Name, "source", source)

	return result, nil
}

// Invoke - simulates, signs with the configured secret key and submits a call, then
// waits for the transaction to leave the pending state or for ctx to end
func (inv *Invoker) Invoke(ctx context.Context, contractID string, fn *data.FunctionDescriptor, values map[string]string) (*data.InvokeResult, error) {
	if inv.signer == nil {
		return nil, &InvocationError{Function: fn.Name, Err: errors.New("no secret key configured")}
	}

	result, err := inv.invoke(ctx, contractID, fn, values)
	if err != nil {
		return result, &InvocationError{Function: fn.Name, Err: err}
	}

	return result, nil
}

func (inv *Invoker) invoke(ctx context.Context, contractID string, fn *data.FunctionDescriptor, values map[string]string) (*data.InvokeResult, error) {
	source := inv.signer.KeyPair().Address()

	op, err := invokeOperation(contractID, fn, values, source)
	if err != nil {
		return nil, err
	}

	sim, err := inv.simulate(ctx, source, op)
	if err != nil {
		return nil, err
	}

	fee, err := applySimulation(op, sim)
	if err != nil {
		return nil, err
	}

	tx, err := inv.buildTransaction(ctx, source, op, fee)
	if err != nil {
		return nil, err
	}
	tx, err = tx.Sign(inv.node.Passphrase(), inv.signer.KeyPair())
	if err != nil {
		return nil, errors.Wrap(err, "signing transaction")
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, errors.Wrap(err, "encoding transaction")
	}

	sent, err := inv.node.SendTransaction(ctx, envelope)
	if err != nil {
		return nil, err
	}
	if sent.Status == statusError || sent.Status == statusTryAgainLater {
		return nil, errors.Errorf("transaction %s rejected with status %s %s", sent.Hash, sent.Status, sent.ErrorResultXDR)
	}

	log.Info("transaction submitted", "contract", contractID, "function", fn.Name, "hash", sent.Hash)

	result := &data.InvokeResult{
		Function: fn.Name,
		Hash:     sent.Hash,
		Status:   sent.Status,
	}

	return inv.waitForTransaction(ctx, result)
}

func (inv *Invoker) waitForTransaction(ctx context.Context, result *data.InvokeResult) (*data.InvokeResult, error) {
	for {
		status, err := inv.node.GetTransaction(ctx, result.Hash)
		if err != nil {
			return result, err
		}

		if status.Status != statusNotFound {
			result.Status = status.Status
			result.Ledger = status.Ledger
			if status.Status == statusFailed {
				return result, errors.Errorf("transaction %s failed", result.Hash)
			}
			return result, nil
		}

		select {
		case <-ctx.Done():
			return result, errors.Wrapf(ctx.Err(), "waiting for transaction %s", result.Hash)
		case <-time.After(inv.pollInterval):
		}
	}
}

func (inv *Invoker) sourceAccount(ctx context.Context, keys wallet.KeySource) (string, error) {
	if keys == nil && inv.signer != nil {
		keys = inv.signer
	}
	if keys == nil {
		return "", errNoKey
	}

	return keys.PublicKey(ctx)
}

func (inv *Invoker) simulate(ctx context.Context, source string, op *txnbuild.InvokeHostFunction) (*data.SimulateTransactionResponse, error) {
	tx, err := inv.buildTransaction(ctx, source, op, txnbuild.MinBaseFee)
	if err != nil {
		return nil, err
	}
	envelope, err := tx.Base64()
	if err != nil {
		return nil, errors.Wrap(err, "encoding transaction")
	}

	sim, err := inv.node.SimulateTransaction(ctx, envelope)
	if err != nil {
		return nil, err
	}
	if sim.Error != "" {
		return nil, errors.Errorf("simulation error: %s", sim.Error)
	}

	return sim, nil
}

func (inv *Invoker) buildTransaction(ctx context.Context, source string, op *txnbuild.InvokeHostFunction, fee int64) (*txnbuild.Transaction, error) {
	seq, err := inv.node.GetAccountSequence(ctx, source)
	if err != nil {
		return nil, err
	}

	account := txnbuild.NewSimpleAccount(source, seq)
	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		BaseFee:              fee,
		Operations:           []txnbuild.Operation{op},
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(txTimeoutInSec),
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "building transaction")
	}

	return tx, nil
}

func invokeOperation(contractID string, fn *data.FunctionDescriptor, values map[string]string, source string) (*txnbuild.InvokeHostFunction, error) {
	contract, err := network.ContractAddress(contractID)
	if err != nil {
		return nil, err
	}

	args, err := BuildArgs(fn, values)
	if err != nil {
		return nil, err
	}

	return &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(fn.Name),
				Args:            args,
			},
		},
		SourceAccount: source,
	}, nil
}

// applySimulation attaches the footprint, the resources and the authorizations computed
// by the simulation to the operation and returns the fee to bid
func applySimulation(op *txnbuild.InvokeHostFunction, sim *data.SimulateTransactionResponse) (int64, error) {
	var sorobanData xdr.SorobanTransactionData
	err := xdr.SafeUnmarshalBase64(sim.TransactionData, &sorobanData)
	if err != nil {
		return 0, errors.Wrap(err, "decoding simulated transaction data")
	}

	resourceFee, err := strconv.ParseInt(sim.MinResourceFee, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid resource fee %q", sim.MinResourceFee)
	}

	op.Ext = xdr.TransactionExt{V: 1, SorobanData: &sorobanData}
	op.Auth = nil
	if len(sim.Results) > 0 {
		for _, b64 := range sim.Results[0].Auth {
			var entry xdr.SorobanAuthorizationEntry
			err = xdr.SafeUnmarshalBase64(b64, &entry)
			if err != nil {
				return 0, errors.Wrap(err, "decoding authorization entry")
			}
			op.Auth = append(op.Auth, entry)
		}
	}

	return txnbuild.MinBaseFee + resourceFee, nil
}

func callResult(function string, sim *data.SimulateTransactionResponse) (*data.CallResult, error) {
	if len(sim.Results) == 0 {
		return nil, errors.New("simulation returned no result")
	}

	raw := sim.Results[0].XDR
	var retval xdr.ScVal
	err := xdr.SafeUnmarshalBase64(raw, &retval)
	if err != nil {
		return nil, errors.Wrap(err, "decoding return value")
	}

	value, err := ToNative(retval)
	if err != nil {
		return nil, err
	}

	return &data.CallResult{
		Function: function,
		Value:    value,
		Raw:      raw,
	}, nil
}
