package invoke

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ToNative - converts a contract value into plain Go values that encode well to JSON.
// 128 and 256 bit integers become decimal strings, bytes become hex, addresses strkeys
func ToNative(v xdr.ScVal) (interface{}, error) {
	switch v.Type {
	case xdr.ScValTypeScvVoid:
		return nil, nil
	case xdr.ScValTypeScvBool:
		return *v.B, nil
	case xdr.ScValTypeScvU32:
		return uint32(*v.U32), nil
	case xdr.ScValTypeScvI32:
		return int32(*v.I32), nil
	case xdr.ScValTypeScvU64:
		return uint64(*v.U64), nil
	case xdr.ScValTypeScvI64:
		return int64(*v.I64), nil
	case xdr.ScValTypeScvTimepoint:
		return uint64(*v.Timepoint), nil
	case xdr.ScValTypeScvDuration:
		return uint64(*v.Duration), nil
	case xdr.ScValTypeScvU128:
		return fromLimbs([]uint64{uint64(v.U128.Hi), uint64(v.U128.Lo)}, false).String(), nil
	case xdr.ScValTypeScvI128:
		return fromLimbs([]uint64{uint64(v.I128.Hi), uint64(v.I128.Lo)}, true).String(), nil
	case xdr.ScValTypeScvU256:
		p := v.U256
		return fromLimbs([]uint64{uint64(p.HiHi), uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)}, false).String(), nil
	case xdr.ScValTypeScvI256:
		p := v.I256
		return fromLimbs([]uint64{uint64(p.HiHi), uint64(p.HiLo), uint64(p.LoHi), uint64(p.LoLo)}, true).String(), nil
	case xdr.ScValTypeScvBytes:
		return hex.EncodeToString(*v.Bytes), nil
	case xdr.ScValTypeScvString:
		return string(*v.Str), nil
	case xdr.ScValTypeScvSymbol:
		return string(*v.Sym), nil
	case xdr.ScValTypeScvAddress:
		return addressString(*v.Address)
	case xdr.ScValTypeScvError:
		return errorValue(*v.Error), nil
	case xdr.ScValTypeScvVec:
		out := make([]interface{}, 0)
		if v.Vec == nil || *v.Vec == nil {
			return out, nil
		}
		for _, item := range **v.Vec {
			native, err := ToNative(item)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case xdr.ScValTypeScvMap:
		out := make(map[string]interface{})
		if v.Map == nil || *v.Map == nil {
			return out, nil
		}
		for _, entry := range **v.Map {
			key, err := ToNative(entry.Key)
			if err != nil {
				return nil, err
			}
			val, err := ToNative(entry.Val)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(key)] = val
		}
		return out, nil
	}

	return nil, errors.Errorf("unsupported value type %d", int32(v.Type))
}

func addressString(address xdr.ScAddress) (string, error) {
	switch address.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		return address.AccountId.Address(), nil
	case xdr.ScAddressTypeScAddressTypeContract:
		return strkey.Encode(strkey.VersionByteContract, address.ContractId[:])
	}

	return "", errors.Errorf("unsupported address type %d", int32(address.Type))
}

func errorValue(scErr xdr.ScError) map[string]interface{} {
	out := map[string]interface{}{"type": int32(scErr.Type)}
	if scErr.ContractCode != nil {
		out["contractCode"] = uint32(*scErr.ContractCode)
	}
	if scErr.Code != nil {
		out["code"] = int32(*scErr.Code)
	}

	return out
}
