package invoke

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/network"
	"github.com/stellar/go/xdr"
)

// Find - returns the function with the given name
func Find(functions []data.FunctionDescriptor, name string) (*data.FunctionDescriptor, error) {
	for i := range functions {
		if functions[i].Name == name {
			return &functions[i], nil
		}
	}

	return nil, errors.Errorf("contract has no function %q", name)
}

// BuildArgs - converts the user supplied values, keyed by input name, into the call arguments
func BuildArgs(fn *data.FunctionDescriptor, values map[string]string) ([]xdr.ScVal, error) {
	args := make([]xdr.ScVal, 0, len(fn.Inputs))
	for _, input := range fn.Inputs {
		value, ok := values[input.Name]
		if !ok {
			return nil, errors.Errorf("missing argument %s", input.Name)
		}

		arg, err := ParseArg(input.Type, value)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %s", input.Name)
		}
		args = append(args, arg)
	}

	return args, nil
}

// ParseArg - converts a textual value into an ScVal of the given type tag
func ParseArg(typeTag string, value string) (xdr.ScVal, error) {
	value = strings.TrimSpace(value)

	switch typeTag {
	case "Void":
		return xdr.ScVal{Type: xdr.ScValTypeScvVoid}, nil
	case "Bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return xdr.ScVal{}, errors.Errorf("invalid bool %q", value)
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvBool, B: &b}, nil
	case "U32":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return xdr.ScVal{}, errors.Errorf("invalid u32 %q", value)
		}
		u := xdr.Uint32(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvU32, U32: &u}, nil
	case "I32":
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return xdr.ScVal{}, errors.Errorf("invalid i32 %q", value)
		}
		i := xdr.Int32(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvI32, I32: &i}, nil
	case "U64", "Timepoint", "Duration":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return xdr.ScVal{}, errors.Errorf("invalid %s %q", strings.ToLower(typeTag), value)
		}
		return unsigned64(typeTag, n), nil
	case "I64":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return xdr.ScVal{}, errors.Errorf("invalid i64 %q", value)
		}
		i := xdr.Int64(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvI64, I64: &i}, nil
	case "U128", "I128", "U256", "I256":
		return parseBigInt(typeTag, value)
	case "Bytes", "BytesN":
		b, err := hex.DecodeString(strings.TrimPrefix(value, "0x"))
		if err != nil {
			return xdr.ScVal{}, errors.Errorf("invalid hex bytes %q", value)
		}
		sb := xdr.ScBytes(b)
		return xdr.ScVal{Type: xdr.ScValTypeScvBytes, Bytes: &sb}, nil
	case "String":
		s := xdr.ScString(value)
		return xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &s}, nil
	case "Symbol":
		s := xdr.ScSymbol(value)
		return xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &s}, nil
	case "Address":
		address, err := parseAddress(value)
		if err != nil {
			return xdr.ScVal{}, err
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &address}, nil
	}

	return xdr.ScVal{}, errors.Errorf("arguments of type %s are not supported", typeTag)
}

func unsigned64(typeTag string, n uint64) xdr.ScVal {
	switch typeTag {
	case "Timepoint":
		tp := xdr.TimePoint(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvTimepoint, Timepoint: &tp}
	case "Duration":
		d := xdr.Duration(n)
		return xdr.ScVal{Type: xdr.ScValTypeScvDuration, Duration: &d}
	}
	u := xdr.Uint64(n)
	return xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &u}
}

func parseBigInt(typeTag string, value string) (xdr.ScVal, error) {
	n, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return xdr.ScVal{}, errors.Errorf("invalid %s %q", strings.ToLower(typeTag), value)
	}

	signed := typeTag[0] == 'I'
	size := 2
	if strings.HasSuffix(typeTag, "256") {
		size = 4
	}
	limbs, err := toLimbs(n, size, signed)
	if err != nil {
		return xdr.ScVal{}, err
	}

	switch typeTag {
	case "U128":
		parts := xdr.UInt128Parts{Hi: xdr.Uint64(limbs[0]), Lo: xdr.Uint64(limbs[1])}
		return xdr.ScVal{Type: xdr.ScValTypeScvU128, U128: &parts}, nil
	case "I128":
		parts := xdr.Int128Parts{Hi: xdr.Int64(int64(limbs[0])), Lo: xdr.Uint64(limbs[1])}
		return xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts}, nil
	case "U256":
		parts := xdr.UInt256Parts{
			HiHi: xdr.Uint64(limbs[0]), HiLo: xdr.Uint64(limbs[1]),
			LoHi: xdr.Uint64(limbs[2]), LoLo: xdr.Uint64(limbs[3]),
		}
		return xdr.ScVal{Type: xdr.ScValTypeScvU256, U256: &parts}, nil
	}

	parts := xdr.Int256Parts{
		HiHi: xdr.Int64(int64(limbs[0])), HiLo: xdr.Uint64(limbs[1]),
		LoHi: xdr.Uint64(limbs[2]), LoLo: xdr.Uint64(limbs[3]),
	}
	return xdr.ScVal{Type: xdr.ScValTypeScvI256, I256: &parts}, nil
}

func parseAddress(value string) (xdr.ScAddress, error) {
	if strings.HasPrefix(value, "C") {
		return network.ContractAddress(value)
	}

	var accountID xdr.AccountId
	err := accountID.SetAddress(value)
	if err != nil {
		return xdr.ScAddress{}, errors.Errorf("invalid address %q", value)
	}

	return xdr.ScAddress{
		Type:      xdr.ScAddressTypeScAddressTypeAccount,
		AccountId: &accountID,
	}, nil
}

// ParseArgLines - reads "name=value" lines, as typed into a chat reply
func ParseArgLines(text string) map[string]string {
	values := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		values[strings.TrimSpace(line[:idx])] = strings.TrimSpace(line[idx+1:])
	}

	return values
}
