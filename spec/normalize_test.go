package spec

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/testutil"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawSpec(entries ...xdr.ScSpecEntry) *RawSpec {
	raw := &RawSpec{}
	for _, e := range entries {
		raw.Functions = append(raw.Functions, *e.FunctionV0)
	}
	return raw
}

func TestNormalizeBalanceScenario(t *testing.T) {
	raw := rawSpec(testutil.Function("balance", "Returns balance",
		[]testutil.Input{{Name: "id", Type: xdr.ScSpecTypeScSpecTypeAddress}},
		xdr.ScSpecTypeScSpecTypeI128))

	functions, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, []data.FunctionDescriptor{{
		Name:    "balance",
		Doc:     "Returns balance",
		Inputs:  []data.Param{{Name: "id", Type: "Address"}},
		Outputs: []data.Param{{Name: "I128", Type: "I128"}},
	}}, functions)
}

func TestNormalizePreservesOrder(t *testing.T) {
	functions, err := Normalize(rawSpec(testutil.TokenSpec()...))
	require.NoError(t, err)
	require.Len(t, functions, 3)
	assert.Equal(t, "balance", functions[0].Name)
	assert.Equal(t, "decimals", functions[1].Name)
	assert.Equal(t, "transfer", functions[2].Name)

	transfer := functions[2]
	assert.Equal(t, []data.Param{
		{Name: "from", Type: "Address"},
		{Name: "to", Type: "Address"},
		{Name: "amount", Type: "I128"},
	}, transfer.Inputs)
}

func TestNormalizeEmptyListsAreNotNil(t *testing.T) {
	functions, err := Normalize(rawSpec(testutil.Function("init", "", nil)))
	require.NoError(t, err)
	require.Len(t, functions, 1)
	assert.NotNil(t, functions[0].Inputs)
	assert.NotNil(t, functions[0].Outputs)
	assert.False(t, functions[0].HasInputs())

	b, err := json.Marshal(functions[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"init","doc":"","inputs":[],"outputs":[]}`, string(b))

	functions, err = Normalize(&RawSpec{})
	require.NoError(t, err)
	assert.NotNil(t, functions)
	assert.Empty(t, functions)
}

func TestNormalizeOutputNameIsType(t *testing.T) {
	raw := rawSpec(testutil.Function("pair", "", nil,
		xdr.ScSpecTypeScSpecTypeU32, xdr.ScSpecTypeScSpecTypeString, xdr.ScSpecTypeScSpecTypeVec))

	functions, err := Normalize(raw)
	require.NoError(t, err)
	for _, out := range functions[0].Outputs {
		assert.Equal(t, out.Type, out.Name)
	}
	assert.Equal(t, "Vec", functions[0].Outputs[2].Type)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	raw := rawSpec(testutil.TokenSpec()...)

	first, err := Normalize(raw)
	require.NoError(t, err)
	second, err := Normalize(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeMalformed(t *testing.T) {
	_, err := Normalize(nil)
	var normErr *NormalizeError
	require.True(t, errors.As(err, &normErr))

	entry := testutil.Function("bad", "", []testutil.Input{{Name: "x", Type: xdr.ScSpecType(9999)}})
	_, err = Normalize(rawSpec(entry))
	require.True(t, errors.As(err, &normErr))
	assert.Equal(t, "bad", normErr.Function)
	assert.Contains(t, err.Error(), "input x")
}
