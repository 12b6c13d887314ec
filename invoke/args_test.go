package invoke

import (
	"math/big"
	"testing"

	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/testutil"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgRoundTrip(t *testing.T) {
	account := keypair.MustRandom().Address()
	contract := testutil.UnknownContractID(t)

	cases := []struct {
		tag      string
		input    string
		expected interface{}
	}{
		{"Bool", "true", true},
		{"U32", "7", uint32(7)},
		{"I32", "-7", int32(-7)},
		{"U64", "18446744073709551615", uint64(18446744073709551615)},
		{"I64", "-9223372036854775808", int64(-9223372036854775808)},
		{"Timepoint", "1700000000", uint64(1700000000)},
		{"Duration", "60", uint64(60)},
		{"U128", "340282366920938463463374607431768211455", "340282366920938463463374607431768211455"},
		{"I128", "-170141183460469231731687303715884105728", "-170141183460469231731687303715884105728"},
		{"I128", "-1", "-1"},
		{"I128", "12345678901234567890", "12345678901234567890"},
		{"U256", "115792089237316195423570985008687907853269984665640564039457584007913129639935", "115792089237316195423570985008687907853269984665640564039457584007913129639935"},
		{"I256", "-2", "-2"},
		{"Bytes", "0xdeadbeef", "deadbeef"},
		{"BytesN", "00ff", "00ff"},
		{"String", " hello ", "hello"},
		{"Symbol", "transfer", "transfer"},
		{"Address", account, account},
		{"Address", contract, contract},
		{"Void", "", nil},
	}

	for _, c := range cases {
		val, err := ParseArg(c.tag, c.input)
		require.NoError(t, err, "%s %s", c.tag, c.input)

		native, err := ToNative(val)
		require.NoError(t, err, "%s %s", c.tag, c.input)
		assert.Equal(t, c.expected, native, "%s %s", c.tag, c.input)
	}
}

func TestParseArgErrors(t *testing.T) {
	cases := []struct {
		tag   string
		input string
		err   string
	}{
		{"Bool", "maybe", "invalid bool"},
		{"U32", "-1", "invalid u32"},
		{"U32", "4294967296", "invalid u32"},
		{"I64", "x", "invalid i64"},
		{"U128", "-1", "does not fit in 128 bits"},
		{"I128", "170141183460469231731687303715884105728", "does not fit in 128 bits"},
		{"U256", "1.5", "invalid u256"},
		{"Bytes", "xyz", "invalid hex bytes"},
		{"Address", "GBAD", "invalid address"},
		{"Address", "CBAD", "invalid contract id"},
		{"Vec", "[1,2]", "not supported"},
		{"Udt", "{}", "not supported"},
	}

	for _, c := range cases {
		_, err := ParseArg(c.tag, c.input)
		assert.Regexp(t, c.err, err, "%s %s", c.tag, c.input)
	}
}

func TestBuildArgs(t *testing.T) {
	fn := &data.FunctionDescriptor{
		Name: "transfer",
		Inputs: []data.Param{
			{Name: "to", Type: "Address"},
			{Name: "amount", Type: "I128"},
		},
	}
	to := keypair.MustRandom().Address()

	args, err := BuildArgs(fn, map[string]string{"amount": "10", "to": to})
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, xdr.ScValTypeScvAddress, args[0].Type)
	assert.Equal(t, xdr.ScValTypeScvI128, args[1].Type)

	_, err = BuildArgs(fn, map[string]string{"to": to})
	assert.Regexp(t, "missing argument amount", err)

	_, err = BuildArgs(fn, map[string]string{"to": to, "amount": "ten"})
	assert.Regexp(t, "argument amount: invalid i128", err)

	args, err = BuildArgs(&data.FunctionDescriptor{Name: "decimals"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, args)
	assert.Empty(t, args)
}

func TestFind(t *testing.T) {
	functions := []data.FunctionDescriptor{{Name: "a"}, {Name: "b"}}

	fn, err := Find(functions, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", fn.Name)

	_, err = Find(functions, "c")
	assert.Regexp(t, `no function "c"`, err)
}

func TestParseArgLines(t *testing.T) {
	values := ParseArgLines("to = GABC\n\namount=10\ninvalid\n=orphan\nmemo=a=b")
	assert.Equal(t, map[string]string{
		"to":     "GABC",
		"amount": "10",
		"memo":   "a=b",
	}, values)
}

func TestLimbs(t *testing.T) {
	v, _ := new(big.Int).SetString("-170141183460469231731687303715884105728", 10)
	limbs, err := toLimbs(v, 2, true)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1 << 63, 0}, limbs)
	assert.Equal(t, 0, fromLimbs(limbs, true).Cmp(v))

	limbs, err = toLimbs(big.NewInt(-1), 2, true)
	require.NoError(t, err)
	assert.Equal(t, []uint64{^uint64(0), ^uint64(0)}, limbs)

	_, err = toLimbs(big.NewInt(-1), 2, false)
	assert.Error(t, err)
}
