package spec

import (
	"context"
	"strings"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
)

var log = logger.GetOrCreate("spec")

// WasmSource - retrieves the bytecode of a deployed contract
type WasmSource interface {
	GetContractWasm(ctx context.Context, contractID string) ([]byte, error)
}

// Fetcher - retrieves contract specs from the network
type Fetcher struct {
	source WasmSource
}

// NewFetcher - creates a new Fetcher object
func NewFetcher(source WasmSource) (*Fetcher, error) {
	if source == nil {
		return nil, errors.New("nil wasm source")
	}

	return &Fetcher{source: source}, nil
}

// Fetch - retrieves the contract bytecode and extracts the spec embedded within it.
// Every failure is reported as a *FetchError
func (f *Fetcher) Fetch(ctx context.Context, contractID string) (*RawSpec, error) {
	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return nil, &FetchError{Err: errors.New("empty contract id")}
	}

	wasm, err := f.source.GetContractWasm(ctx, contractID)
	if err != nil {
		log.Debug("can not get contract wasm", "contract", contractID, "error", err)
		return nil, &FetchError{ContractID: contractID, Err: err}
	}

	raw, err := FromWasm(ctx, wasm)
	if err != nil {
		log.Debug("can not extract contract spec", "contract", contractID, "error", err)
		return nil, &FetchError{ContractID: contractID, Err: err}
	}

	log.Trace("contract spec fetched", "contract", contractID, "functions", len(raw.Functions))

	return raw, nil
}

// Load - fetches and normalizes the spec of a contract
func (f *Fetcher) Load(ctx context.Context, contractID string) ([]data.FunctionDescriptor, error) {
	raw, err := f.Fetch(ctx, contractID)
	if err != nil {
		return nil, err
	}

	return Normalize(raw)
}
