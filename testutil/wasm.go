package testutil

import (
	"bytes"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
)

var wasmHeader = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

func uleb128(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}

// Wasm builds a minimal wasm image holding only the given custom sections, in order
func Wasm(sections ...CustomSection) []byte {
	buf := bytes.NewBuffer(append([]byte{}, wasmHeader...))
	for _, s := range sections {
		payload := append(uleb128(uint32(len(s.Name))), []byte(s.Name)...)
		payload = append(payload, s.Data...)
		buf.WriteByte(0)
		buf.Write(uleb128(uint32(len(payload))))
		buf.Write(payload)
	}
	return buf.Bytes()
}

// CustomSection - a wasm custom section
type CustomSection struct {
	Name string
	Data []byte
}

// SpecSection encodes spec entries the way soroban compilers embed them
func SpecSection(t testing.TB, entries ...xdr.ScSpecEntry) CustomSection {
	var data []byte
	for _, entry := range entries {
		b, err := entry.MarshalBinary()
		require.NoError(t, err)
		data = append(data, b...)
	}
	return CustomSection{Name: "contractspecv0", Data: data}
}

// Type builds a spec type definition without parameters
func Type(t xdr.ScSpecType) xdr.ScSpecTypeDef {
	return xdr.ScSpecTypeDef{Type: t}
}

// Input - a named function input
type Input struct {
	Name string
	Type xdr.ScSpecType
}

// Function builds a function spec entry
func Function(name, doc string, inputs []Input, outputs ...xdr.ScSpecType) xdr.ScSpecEntry {
	fn := xdr.ScSpecFunctionV0{
		Doc:  doc,
		Name: xdr.ScSymbol(name),
	}
	for _, in := range inputs {
		fn.Inputs = append(fn.Inputs, xdr.ScSpecFunctionInputV0{Name: in.Name, Type: Type(in.Type)})
	}
	for _, out := range outputs {
		fn.Outputs = append(fn.Outputs, Type(out))
	}
	return xdr.ScSpecEntry{
		Kind:       xdr.ScSpecEntryKindScSpecEntryFunctionV0,
		FunctionV0: &fn,
	}
}

// TokenSpec returns the entries of a small token-like contract
func TokenSpec() []xdr.ScSpecEntry {
	return []xdr.ScSpecEntry{
		Function("balance", "Returns balance", []Input{{Name: "id", Type: xdr.ScSpecTypeScSpecTypeAddress}}, xdr.ScSpecTypeScSpecTypeI128),
		Function("decimals", "", nil, xdr.ScSpecTypeScSpecTypeU32),
		Function("transfer", "Moves tokens", []Input{
			{Name: "from", Type: xdr.ScSpecTypeScSpecTypeAddress},
			{Name: "to", Type: xdr.ScSpecTypeScSpecTypeAddress},
			{Name: "amount", Type: xdr.ScSpecTypeScSpecTypeI128},
		}),
	}
}
