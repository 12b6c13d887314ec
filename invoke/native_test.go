package invoke

import (
	"encoding/json"
	"testing"

	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNativeCollections(t *testing.T) {
	one, err := ParseArg("U32", "1")
	require.NoError(t, err)
	sym, err := ParseArg("Symbol", "name")
	require.NoError(t, err)
	str, err := ParseArg("String", "token")
	require.NoError(t, err)

	vec := &xdr.ScVec{one, str}
	m := &xdr.ScMap{{Key: sym, Val: str}}
	val := xdr.ScVal{Type: xdr.ScValTypeScvVec, Vec: &vec}
	nested := xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &m}

	native, err := ToNative(val)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{uint32(1), "token"}, native)

	native, err = ToNative(nested)
	require.NoError(t, err)
	b, err := json.Marshal(native)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"token"}`, string(b))

	native, err = ToNative(xdr.ScVal{Type: xdr.ScValTypeScvVec})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, native)
}

func TestToNativeError(t *testing.T) {
	code := xdr.Uint32(3)
	native, err := ToNative(xdr.ScVal{
		Type:  xdr.ScValTypeScvError,
		Error: &xdr.ScError{Type: xdr.ScErrorTypeSceContract, ContractCode: &code},
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(3), native.(map[string]interface{})["contractCode"])
}

func TestToNativeUnsupported(t *testing.T) {
	_, err := ToNative(xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance})
	assert.Regexp(t, "unsupported value type", err)
}
