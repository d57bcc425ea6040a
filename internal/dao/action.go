package dao

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Action is one contract call executed by the DAO agent when a vote passes.
// Signature is a canonical function signature such as
// "set_killed(address,bool)"; Args are its arguments in text form.
type Action struct {
	Target    common.Address `json:"target" mapstructure:"target"`
	Signature string         `json:"signature" mapstructure:"signature"`
	Args      []string       `json:"args" mapstructure:"args"`
}

// Calldata ABI-encodes the call including its 4-byte selector.
func (a Action) Calldata() ([]byte, error) {
	method, err := parseSignature(a.Signature)
	if err != nil {
		return nil, err
	}
	if len(a.Args) != len(method.Inputs) {
		return nil, fmt.Errorf("%s: expected %d args, got %d", a.Signature, len(method.Inputs), len(a.Args))
	}

	values := make([]interface{}, len(a.Args))
	for i, raw := range a.Args {
		v, err := parseArg(method.Inputs[i].Type, raw)
		if err != nil {
			return nil, fmt.Errorf("%s arg %d: %w", a.Signature, i, err)
		}
		values[i] = v
	}

	packed, err := method.Inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", a.Signature, err)
	}
	return append(append([]byte{}, method.ID...), packed...), nil
}

// ParseAction parses "0xTarget:fn(type,...):arg1,arg2".
func ParseAction(s string) (Action, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return Action{}, fmt.Errorf("invalid action %q: want target:signature[:args]", s)
	}
	if !common.IsHexAddress(parts[0]) {
		return Action{}, fmt.Errorf("invalid action target %q", parts[0])
	}
	action := Action{Target: common.HexToAddress(parts[0]), Signature: strings.TrimSpace(parts[1])}
	if len(parts) == 3 && parts[2] != "" {
		for _, arg := range strings.Split(parts[2], ",") {
			action.Args = append(action.Args, strings.TrimSpace(arg))
		}
	}
	if _, err := parseSignature(action.Signature); err != nil {
		return Action{}, err
	}
	return action, nil
}

func parseSignature(sig string) (abi.Method, error) {
	open := strings.Index(sig, "(")
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return abi.Method{}, fmt.Errorf("invalid function signature %q", sig)
	}
	name := sig[:open]
	body := strings.TrimSpace(sig[open+1 : len(sig)-1])

	var inputs abi.Arguments
	if body != "" {
		for i, typeName := range strings.Split(body, ",") {
			typ, err := abi.NewType(strings.TrimSpace(typeName), "", nil)
			if err != nil {
				return abi.Method{}, fmt.Errorf("%s: %w", sig, err)
			}
			inputs = append(inputs, abi.Argument{Name: "arg" + strconv.Itoa(i), Type: typ})
		}
	}
	return abi.NewMethod(name, name, abi.Function, "nonpayable", false, false, inputs, nil), nil
}

var bigIntType = reflect.TypeOf(&big.Int{})

func parseArg(typ abi.Type, raw string) (interface{}, error) {
	switch typ.T {
	case abi.AddressTy:
		if !common.IsHexAddress(raw) {
			return nil, fmt.Errorf("invalid address %q", raw)
		}
		return common.HexToAddress(raw), nil
	case abi.BoolTy:
		return strconv.ParseBool(raw)
	case abi.StringTy:
		return raw, nil
	case abi.BytesTy:
		return hexutil.Decode(raw)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(raw)
		if err != nil {
			return nil, err
		}
		if len(b) != typ.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", typ.Size, len(b))
		}
		out := reflect.New(typ.GetType()).Elem()
		reflect.Copy(out, reflect.ValueOf(b))
		return out.Interface(), nil
	case abi.UintTy, abi.IntTy:
		return parseInteger(typ, raw)
	default:
		return nil, fmt.Errorf("unsupported argument type %s", typ.String())
	}
}

func parseInteger(typ abi.Type, raw string) (interface{}, error) {
	v, ok := new(big.Int).SetString(strings.TrimPrefix(strings.TrimPrefix(raw, "0x"), "0X"), intBase(raw))
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", raw)
	}

	if typ.T == abi.UintTy {
		if v.Sign() < 0 || v.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s out of range for %s", raw, typ.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		if v.Cmp(limit) >= 0 || v.Cmp(new(big.Int).Neg(limit)) < 0 {
			return nil, fmt.Errorf("%s out of range for %s", raw, typ.String())
		}
	}

	goType := typ.GetType()
	if goType == bigIntType {
		return v, nil
	}
	out := reflect.New(goType).Elem()
	if typ.T == abi.UintTy {
		out.SetUint(v.Uint64())
	} else {
		out.SetInt(v.Int64())
	}
	return out.Interface(), nil
}

func intBase(raw string) int {
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return 16
	}
	return 10
}
