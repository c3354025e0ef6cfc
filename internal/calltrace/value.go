package calltrace

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindU256
	KindAddress
	KindSigner
	KindString
	KindVector
	KindStruct
	KindRaw
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindU128:    "u128",
	KindU256:    "u256",
	KindAddress: "address",
	KindSigner:  "signer",
	KindString:  "string",
	KindVector:  "vector",
	KindStruct:  "struct",
	KindRaw:     "raw",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

func parseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s && Kind(k) != KindInvalid {
			return Kind(k), nil
		}
	}
	return KindInvalid, fmt.Errorf("calltrace: unknown value kind %q", s)
}

func (k Kind) isInteger() bool {
	return k >= KindU8 && k <= KindU256
}

func (k Kind) bits() int {
	switch k {
	case KindU8:
		return 8
	case KindU16:
		return 16
	case KindU32:
		return 32
	case KindU64:
		return 64
	case KindU128:
		return 128
	default:
		return 256
	}
}

type Field struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Value is a generic structured rendering of a Move value as seen by the tracer.
type Value struct {
	Kind    Kind
	Bool    bool
	Int     *uint256.Int
	Address string
	Str     string
	Bytes   []byte
	Elems   []Value
	Type    string
	Fields  []Field
}

func Bool(b bool) Value        { return Value{Kind: KindBool, Bool: b} }
func U8(v uint8) Value         { return Value{Kind: KindU8, Int: uint256.NewInt(uint64(v))} }
func U16(v uint16) Value       { return Value{Kind: KindU16, Int: uint256.NewInt(uint64(v))} }
func U32(v uint32) Value       { return Value{Kind: KindU32, Int: uint256.NewInt(uint64(v))} }
func U64(v uint64) Value       { return Value{Kind: KindU64, Int: uint256.NewInt(v)} }
func U128(v *uint256.Int) Value { return Value{Kind: KindU128, Int: v} }
func U256(v *uint256.Int) Value { return Value{Kind: KindU256, Int: v} }
func Address(a string) Value   { return Value{Kind: KindAddress, Address: a} }
func Signer(a string) Value    { return Value{Kind: KindSigner, Address: a} }
func String(s string) Value    { return Value{Kind: KindString, Str: s} }
func Raw(b []byte) Value       { return Value{Kind: KindRaw, Bytes: b} }
func Vector(elems ...Value) Value {
	return Value{Kind: KindVector, Elems: elems}
}
func Struct(typ string, fields ...Field) Value {
	return Value{Kind: KindStruct, Type: typ, Fields: fields}
}

// Generic converts the value to plain JSON-friendly data. Integers wider than
// 32 bits become decimal strings and byte vectors become hex, so the result
// cannot be converted back.
func (v Value) Generic() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindU8, KindU16, KindU32:
		return v.Int.Uint64()
	case KindU64, KindU128, KindU256:
		return v.Int.Dec()
	case KindAddress, KindSigner:
		return v.Address
	case KindString:
		return v.Str
	case KindRaw:
		return hexutil.Encode(v.Bytes)
	case KindVector:
		if isByteVector(v.Elems) {
			buf := make([]byte, len(v.Elems))
			for i, e := range v.Elems {
				buf[i] = byte(e.Int.Uint64())
			}
			return hexutil.Encode(buf)
		}
		out := make([]any, len(v.Elems))
		for i, e := range v.Elems {
			out[i] = e.Generic()
		}
		return out
	case KindStruct:
		out := make(map[string]any, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name] = f.Value.Generic()
		}
		return out
	default:
		return nil
	}
}

func isByteVector(elems []Value) bool {
	if len(elems) == 0 {
		return false
	}
	for _, e := range elems {
		if e.Kind != KindU8 {
			return false
		}
	}
	return true
}

type taggedValue struct {
	Kind  string          `json:"kind"`
	Type  string          `json:"type,omitempty"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON writes the lossless tagged form, e.g. {"kind":"u64","value":"7"}.
func (v Value) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.Kind {
	case KindBool:
		payload = v.Bool
	case KindU8, KindU16, KindU32, KindU64, KindU128, KindU256:
		if v.Int == nil {
			return nil, fmt.Errorf("calltrace: %s value without integer", v.Kind)
		}
		payload = v.Int.Dec()
	case KindAddress, KindSigner:
		payload = v.Address
	case KindString:
		payload = v.Str
	case KindRaw:
		payload = hexutil.Encode(v.Bytes)
	case KindVector:
		elems := v.Elems
		if elems == nil {
			elems = []Value{}
		}
		payload = elems
	case KindStruct:
		fields := v.Fields
		if fields == nil {
			fields = []Field{}
		}
		payload = fields
	default:
		return nil, fmt.Errorf("calltrace: cannot encode %s value", v.Kind)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(taggedValue{Kind: v.Kind.String(), Type: v.Type, Value: raw})
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var tv taggedValue
	if err := json.Unmarshal(data, &tv); err != nil {
		return err
	}
	kind, err := parseKind(tv.Kind)
	if err != nil {
		return err
	}
	out := Value{Kind: kind, Type: tv.Type}
	switch {
	case kind == KindBool:
		err = json.Unmarshal(tv.Value, &out.Bool)
	case kind.isInteger():
		out.Int, err = decodeInt(tv.Value, kind)
	case kind == KindAddress || kind == KindSigner:
		err = json.Unmarshal(tv.Value, &out.Address)
	case kind == KindString:
		err = json.Unmarshal(tv.Value, &out.Str)
	case kind == KindRaw:
		var s string
		if err = json.Unmarshal(tv.Value, &s); err == nil {
			out.Bytes, err = hexutil.Decode(s)
		}
	case kind == KindVector:
		err = json.Unmarshal(tv.Value, &out.Elems)
	case kind == KindStruct:
		err = json.Unmarshal(tv.Value, &out.Fields)
	}
	if err != nil {
		return fmt.Errorf("calltrace: decode %s value: %w", kind, err)
	}
	*v = out
	return nil
}

func decodeInt(raw json.RawMessage, kind Kind) (*uint256.Int, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n uint64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		s = strconv.FormatUint(n, 10)
	}
	x, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, err
	}
	if x.BitLen() > kind.bits() {
		return nil, fmt.Errorf("%s overflows %s", s, kind)
	}
	return x, nil
}
