package sourcemap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func loc(start, end uint32) Loc {
	var l Loc
	l.FileHash[0] = 0xab
	l.Start, l.End = start, end
	return l
}

func sampleTable() *Table {
	t := NewTable(loc(0, 120))
	t.Module = &ModuleName{Name: "coin"}
	t.Module.Address[31] = 1
	t.Structs[0] = &StructMap{
		Definition: loc(10, 40),
		TypeParams: []SourceName{{Name: "T", Loc: loc(20, 21)}},
		Fields:     []Loc{loc(25, 30)},
	}
	t.Functions[0] = &FunctionMap{
		Definition: loc(50, 110),
		Params:     []SourceName{{Name: "amount", Loc: loc(55, 61)}},
		Locals:     []SourceName{{Name: "x", Loc: loc(70, 71)}},
		Code: []CodeEntry{
			{Offset: 0, Loc: loc(70, 80)},
			{Offset: 3, Loc: loc(81, 90)},
			{Offset: 7, Loc: loc(91, 100)},
		},
	}
	t.Functions[1] = &FunctionMap{Definition: loc(111, 119), Native: true}
	t.Constants["E_LIMIT"] = 0
	return t
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := sampleTable()
	b, err := Encode(orig)
	require.NoError(t, err)

	got, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, orig, got)

	again, err := Encode(got)
	require.NoError(t, err)
	require.Equal(t, b, again)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	b, err := Encode(sampleTable())
	require.NoError(t, err)
	_, err = Decode(append(b, 0x00))
	require.ErrorIs(t, err, ErrDecode)
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	b, err := Encode(sampleTable())
	require.NoError(t, err)
	for _, n := range []int{0, 10, 40, len(b) - 1} {
		_, err := Decode(b[:n])
		require.ErrorIs(t, err, ErrDecode, "prefix %d", n)
	}
}

func TestLocate(t *testing.T) {
	tbl := sampleTable()

	span, err := tbl.Locate(0, 3)
	require.NoError(t, err)
	require.Equal(t, Span{Start: 81, End: 90}, span)

	// offsets between recorded entries fall back to the previous entry
	span, err = tbl.Locate(0, 5)
	require.NoError(t, err)
	require.Equal(t, Span{Start: 81, End: 90}, span)

	span, err = tbl.Locate(0, 200)
	require.NoError(t, err)
	require.Equal(t, Span{Start: 91, End: 100}, span)

	_, err = tbl.Locate(1, 0)
	require.True(t, errors.Is(err, ErrNotFound), "native function")

	_, err = tbl.Locate(9, 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocateBeforeFirstEntry(t *testing.T) {
	tbl := NewTable(loc(0, 1))
	tbl.Functions[2] = &FunctionMap{Code: []CodeEntry{{Offset: 4, Loc: loc(1, 2)}}}
	_, err := tbl.Locate(2, 3)
	require.ErrorIs(t, err, ErrNotFound)
}
