package calltrace

import (
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestValueTaggedJSON(t *testing.T) {
	big, err := uint256.FromDecimal("340282366920938463463374607431768211455")
	require.NoError(t, err)

	in := Struct("0x1::coin::Coin<0x1::aptos_coin::AptosCoin>",
		Field{Name: "value", Value: U64(42)},
		Field{Name: "limit", Value: U128(big)},
		Field{Name: "owners", Value: Vector(Address("0x1"), Signer("0xcafe"))},
		Field{Name: "memo", Value: String("hello")},
		Field{Name: "flag", Value: Bool(true)},
		Field{Name: "blob", Value: Raw([]byte{0xde, 0xad})},
	)

	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out Value
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Equal(t, KindStruct, out.Kind)
	require.Equal(t, in.Type, out.Type)
	require.Len(t, out.Fields, 6)
	require.Equal(t, "42", out.Fields[0].Value.Int.Dec())
	require.Equal(t, big.Dec(), out.Fields[1].Value.Int.Dec())
	require.Equal(t, KindSigner, out.Fields[2].Value.Elems[1].Kind)
	require.Equal(t, []byte{0xde, 0xad}, out.Fields[5].Value.Bytes)
}

func TestValueRejectsOverflow(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"kind":"u8","value":"256"}`), &v)
	require.Error(t, err)

	require.NoError(t, json.Unmarshal([]byte(`{"kind":"u8","value":255}`), &v))
	require.Equal(t, uint64(255), v.Generic())
}

func TestValueGeneric(t *testing.T) {
	bytesVec := Vector(U8(1), U8(2), U8(255))
	require.Equal(t, "0x0102ff", bytesVec.Generic())

	mixed := Vector(U64(1), U64(2))
	require.Equal(t, []any{"1", "2"}, mixed.Generic())

	s := Struct("0x1::m::S", Field{Name: "a", Value: U16(3)}, Field{Name: "b", Value: Address("0x1")})
	require.Equal(t, map[string]any{"a": uint64(3), "b": "0x1"}, s.Generic())

	require.Equal(t, []any{}, Vector().Generic())
}
