package sourcemap

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNotFound = errors.New("sourcemap: location not found")

// Loc is a byte range in the file identified by FileHash.
type Loc struct {
	FileHash [32]byte
	Start    uint32
	End      uint32
}

func (l Loc) Span() Span { return Span{Start: l.Start, End: l.End} }

// Span is a half-open byte range in a source text.
type Span struct {
	Start uint32
	End   uint32
}

type SourceName struct {
	Name string
	Loc  Loc
}

type ModuleName struct {
	Address [32]byte
	Name    string
}

type StructMap struct {
	Definition Loc
	TypeParams []SourceName
	Fields     []Loc
}

type CodeEntry struct {
	Offset uint16
	Loc    Loc
}

type FunctionMap struct {
	Definition Loc
	TypeParams []SourceName
	Params     []SourceName
	Locals     []SourceName
	// Code is ordered by offset.
	Code   []CodeEntry
	Native bool
}

// Table is a decoded Move bytecode source map.
type Table struct {
	Definition Loc
	Module     *ModuleName
	Structs    map[uint16]*StructMap
	Functions  map[uint16]*FunctionMap
	Constants  map[string]uint16
}

func NewTable(def Loc) *Table {
	return &Table{
		Definition: def,
		Structs:    make(map[uint16]*StructMap),
		Functions:  make(map[uint16]*FunctionMap),
		Constants:  make(map[string]uint16),
	}
}

// Locate returns the span recorded for the instruction at offset in function
// fdef. The entry with the greatest offset not above the requested one wins.
func (t *Table) Locate(fdef, offset uint16) (Span, error) {
	fn, ok := t.Functions[fdef]
	if !ok {
		return Span{}, fmt.Errorf("%w: no function %d", ErrNotFound, fdef)
	}
	if fn.Native {
		return Span{}, fmt.Errorf("%w: function %d is native", ErrNotFound, fdef)
	}
	i := sort.Search(len(fn.Code), func(i int) bool { return fn.Code[i].Offset > offset })
	if i == 0 {
		return Span{}, fmt.Errorf("%w: no code at or before offset %d in function %d", ErrNotFound, offset, fdef)
	}
	return fn.Code[i-1].Loc.Span(), nil
}

func sortedKeys[K uint16 | string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
