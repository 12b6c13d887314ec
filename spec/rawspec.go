package spec

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/stellar/go/xdr"
	"github.com/tetratelabs/wazero"
)

// SectionName is the wasm custom section soroban compilers embed the contract spec into
const SectionName = "contractspecv0"

// RawSpec holds the decoded contract spec entries, grouped by kind, in declaration order
type RawSpec struct {
	Functions  []xdr.ScSpecFunctionV0
	Structs    []xdr.ScSpecUdtStructV0
	Unions     []xdr.ScSpecUdtUnionV0
	Enums      []xdr.ScSpecUdtEnumV0
	ErrorEnums []xdr.ScSpecUdtErrorEnumV0
}

// ExtractSection returns the payload of the named custom section of a wasm image, or nil
// when the image has no such section. The image is fully decoded and validated
func ExtractSection(ctx context.Context, wasm []byte, name string) ([]byte, error) {
	if len(wasm) == 0 {
		return nil, errors.New("empty wasm image")
	}

	cfg := wazero.NewRuntimeConfigInterpreter().WithCustomSections(true)
	runtime := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer func() {
		_ = runtime.Close(ctx)
	}()

	compiled, err := runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Wrap(err, "invalid wasm image")
	}
	defer func() {
		_ = compiled.Close(ctx)
	}()

	var section []byte
	for _, cs := range compiled.CustomSections() {
		if cs.Name() != name {
			continue
		}
		section = append(section, cs.Data()...)
	}

	return section, nil
}

// DecodeEntries reads concatenated XDR-encoded ScSpecEntry values and returns them grouped by kind
func DecodeEntries(section []byte) (*RawSpec, error) {
	raw := &RawSpec{}
	reader := bytes.NewReader(section)

	for reader.Len() > 0 {
		var entry xdr.ScSpecEntry
		_, err := xdr.Unmarshal(reader, &entry)
		if err != nil {
			return nil, errors.Wrap(err, "decoding spec entry")
		}

		switch entry.Kind {
		case xdr.ScSpecEntryKindScSpecEntryFunctionV0:
			raw.Functions = append(raw.Functions, *entry.FunctionV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtStructV0:
			raw.Structs = append(raw.Structs, *entry.UdtStructV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtUnionV0:
			raw.Unions = append(raw.Unions, *entry.UdtUnionV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtEnumV0:
			raw.Enums = append(raw.Enums, *entry.UdtEnumV0)
		case xdr.ScSpecEntryKindScSpecEntryUdtErrorEnumV0:
			raw.ErrorEnums = append(raw.ErrorEnums, *entry.UdtErrorEnumV0)
		default:
			log.Debug("skipping unknown spec entry", "kind", int32(entry.Kind))
		}
	}

	return raw, nil
}

// FromWasm extracts and decodes the contract spec embedded in a wasm image
func FromWasm(ctx context.Context, wasm []byte) (*RawSpec, error) {
	section, err := ExtractSection(ctx, wasm, SectionName)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, errors.Errorf("wasm image has no %s section", SectionName)
	}

	return DecodeEntries(section)
}
