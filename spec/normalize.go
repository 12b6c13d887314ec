package spec

import (
	"github.com/pkg/errors"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/stellar/go/xdr"
)

var typeTags = map[xdr.ScSpecType]string{
	xdr.ScSpecTypeScSpecTypeVal:       "Val",
	xdr.ScSpecTypeScSpecTypeBool:      "Bool",
	xdr.ScSpecTypeScSpecTypeVoid:      "Void",
	xdr.ScSpecTypeScSpecTypeError:     "Error",
	xdr.ScSpecTypeScSpecTypeU32:       "U32",
	xdr.ScSpecTypeScSpecTypeI32:       "I32",
	xdr.ScSpecTypeScSpecTypeU64:       "U64",
	xdr.ScSpecTypeScSpecTypeI64:       "I64",
	xdr.ScSpecTypeScSpecTypeTimepoint: "Timepoint",
	xdr.ScSpecTypeScSpecTypeDuration:  "Duration",
	xdr.ScSpecTypeScSpecTypeU128:      "U128",
	xdr.ScSpecTypeScSpecTypeI128:      "I128",
	xdr.ScSpecTypeScSpecTypeU256:      "U256",
	xdr.ScSpecTypeScSpecTypeI256:      "I256",
	xdr.ScSpecTypeScSpecTypeBytes:     "Bytes",
	xdr.ScSpecTypeScSpecTypeString:    "String",
	xdr.ScSpecTypeScSpecTypeSymbol:    "Symbol",
	xdr.ScSpecTypeScSpecTypeAddress:   "Address",
	xdr.ScSpecTypeScSpecTypeOption:    "Option",
	xdr.ScSpecTypeScSpecTypeResult:    "Result",
	xdr.ScSpecTypeScSpecTypeVec:       "Vec",
	xdr.ScSpecTypeScSpecTypeMap:       "Map",
	xdr.ScSpecTypeScSpecTypeTuple:     "Tuple",
	xdr.ScSpecTypeScSpecTypeBytesN:    "BytesN",
	xdr.ScSpecTypeScSpecTypeUdt:       "Udt",
}

// TypeTag returns the tag of a spec type: the name of its ScSpecType discriminant
// (Address, I128, Vec, Udt, ...)
func TypeTag(def xdr.ScSpecTypeDef) (string, error) {
	tag, ok := typeTags[def.Type]
	if !ok {
		return "", errors.Errorf("unknown spec type %d", int32(def.Type))
	}

	return tag, nil
}

// Normalize flattens the functions of a raw spec into descriptors, in declaration order.
// Outputs are unnamed in the spec format: both the name and the type of an output
// carry its type tag
func Normalize(raw *RawSpec) ([]data.FunctionDescriptor, error) {
	if raw == nil {
		return nil, &NormalizeError{Err: errors.New("nil spec")}
	}

	functions := make([]data.FunctionDescriptor, 0, len(raw.Functions))
	for _, fn := range raw.Functions {
		descriptor, err := normalizeFunction(fn)
		if err != nil {
			return nil, err
		}
		functions = append(functions, descriptor)
	}

	return functions, nil
}

func normalizeFunction(fn xdr.ScSpecFunctionV0) (data.FunctionDescriptor, error) {
	name := string(fn.Name)
	descriptor := data.FunctionDescriptor{
		Name:    name,
		Doc:     fn.Doc,
		Inputs:  make([]data.Param, 0, len(fn.Inputs)),
		Outputs: make([]data.Param, 0, len(fn.Outputs)),
	}

	for _, input := range fn.Inputs {
		tag, err := TypeTag(input.Type)
		if err != nil {
			return data.FunctionDescriptor{}, &NormalizeError{Function: name, Err: errors.Wrapf(err, "input %s", input.Name)}
		}
		descriptor.Inputs = append(descriptor.Inputs, data.Param{Name: input.Name, Type: tag})
	}

	for i, output := range fn.Outputs {
		tag, err := TypeTag(output)
		if err != nil {
			return data.FunctionDescriptor{}, &NormalizeError{Function: name, Err: errors.Wrapf(err, "output %d", i)}
		}
		descriptor.Outputs = append(descriptor.Outputs, data.Param{Name: tag, Type: tag})
	}

	return descriptor, nil
}
