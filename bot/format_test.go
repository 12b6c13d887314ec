package bot

import (
	"testing"

	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/stretchr/testify/assert"
)

var transferFn = &data.FunctionDescriptor{
	Name: "transfer",
	Doc:  "Moves tokens",
	Inputs: []data.Param{
		{Name: "to", Type: "Address"},
		{Name: "amount", Type: "I128"},
	},
	Outputs: []data.Param{},
}

var decimalsFn = &data.FunctionDescriptor{
	Name:    "decimals",
	Inputs:  []data.Param{},
	Outputs: []data.Param{{Name: "U32", Type: "U32"}},
}

func TestFunctionText(t *testing.T) {
	assert.Equal(t, "transfer(to: Address, amount: I128)\nMoves tokens", functionText(transferFn))
	assert.Equal(t, "decimals() -> U32", functionText(decimalsFn))
}

func TestFunctionKeyboard(t *testing.T) {
	kb := functionKeyboard(decimalsFn, false)
	assert.Len(t, kb.InlineKeyboard, 1)
	assert.Len(t, kb.InlineKeyboard[0], 1)
	assert.Equal(t, ":Read_decimals", *kb.InlineKeyboard[0][0].CallbackData)

	kb = functionKeyboard(transferFn, true)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, ":Simulate_transfer", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, ":Invoke_transfer", *kb.InlineKeyboard[0][1].CallbackData)
}

func TestParseCallback(t *testing.T) {
	action, fn, ok := parseCallback(":Simulate_set_admin")
	assert.True(t, ok)
	assert.Equal(t, actionSimulate, action)
	assert.Equal(t, "set_admin", fn)

	for _, bad := range []string{"About", ":Read_", ":Delete_x", ":Read"} {
		_, _, ok = parseCallback(bad)
		assert.False(t, ok, bad)
	}
}

func TestArgsPromptRoundTrip(t *testing.T) {
	prompt := argsPrompt(actionInvoke, transferFn)
	assert.Contains(t, prompt, "\nto (Address)\namount (I128)")

	action, fn, ok := parsePrompt(prompt)
	assert.True(t, ok)
	assert.Equal(t, actionInvoke, action)
	assert.Equal(t, "transfer", fn)

	_, _, ok = parsePrompt("Send the contract id (C...)")
	assert.False(t, ok)
	_, _, ok = parsePrompt(argsPrompt(actionRead, transferFn))
	assert.False(t, ok)
}

func TestFormatResults(t *testing.T) {
	assert.Equal(t, "✅ decimals\n7", formatCallResult(&data.CallResult{Function: "decimals", Value: uint32(7)}))
	assert.Equal(t, "✅ balance\n\"1000\"", formatCallResult(&data.CallResult{Function: "balance", Value: "1000"}))
	assert.Equal(t, "✅ transfer\nstatus: SUCCESS\nhash: f00d\nledger: 12",
		formatInvokeResult(&data.InvokeResult{Function: "transfer", Status: "SUCCESS", Hash: "f00d", Ledger: 12}))
}
