package utils

const (
	// DefaultConfigPath - default application configuration file path
	DefaultConfigPath = "./config.json"

	// AboutMessage -
	AboutMessage = "`Soroban Fiddle Bot` - read, simulate and invoke the functions of any Soroban contract"
	// MainHelp -
	MainHelp = "`Load contract` - send a contract id (C...) and the bot lists its functions\n\r" +
		"`Set public key` - the account (G...) simulations are run for\n\r" +
		"`Read` - calls a function taking no arguments\n\r" +
		"`Simulate` - calls a function with the arguments you reply with, nothing is submitted\n\r" +
		"You can also send a compiled contract (.wasm) to list the functions it declares"

	// LoadContractMessage -
	LoadContractMessage = "Send the contract id (C...)"
	// SetPublicKeyMessage -
	SetPublicKeyMessage = "Send your public key (G...)"
	// ArgsPromptSuffix - ends the first line of the prompt asking for a function's arguments
	ArgsPromptSuffix = " - reply with one name=value line per argument:"

	// MaxWasmSize - the largest contract image accepted for download
	MaxWasmSize = 1 << 20
)
