package sourcemap

import (
	"fmt"

	"github.com/aptos-labs/aptos-go-sdk/bcs"
)

// Decode parses the BCS encoding of a Move bytecode source map.
func Decode(b []byte) (*Table, error) {
	des := bcs.NewDeserializer(b)
	t := NewTable(readLoc(des))

	if des.Bool() {
		m := &ModuleName{}
		copy(m.Address[:], des.ReadFixedBytes(len(m.Address)))
		m.Name = des.ReadString()
		t.Module = m
	}

	for n := readLen(des); n > 0 && des.Error() == nil; n-- {
		idx := des.U16()
		s := &StructMap{
			Definition: readLoc(des),
			TypeParams: readNames(des),
		}
		for k := readLen(des); k > 0 && des.Error() == nil; k-- {
			s.Fields = append(s.Fields, readLoc(des))
		}
		t.Structs[idx] = s
	}

	for n := readLen(des); n > 0 && des.Error() == nil; n-- {
		idx := des.U16()
		f := &FunctionMap{
			Definition: readLoc(des),
			TypeParams: readNames(des),
			Params:     readNames(des),
			Locals:     readNames(des),
		}
		last := -1
		for k := readLen(des); k > 0 && des.Error() == nil; k-- {
			off := des.U16()
			if int(off) <= last {
				des.SetError(fmt.Errorf("code map offsets out of order in function %d", idx))
				break
			}
			last = int(off)
			f.Code = append(f.Code, CodeEntry{Offset: off, Loc: readLoc(des)})
		}
		f.Native = des.Bool()
		t.Functions[idx] = f
	}

	for n := readLen(des); n > 0 && des.Error() == nil; n-- {
		name := des.ReadString()
		t.Constants[name] = des.U16()
	}

	if err := des.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if rest := des.Remaining(); rest > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrDecode, rest)
	}
	return t, nil
}

// Encode is the inverse of Decode.
func Encode(t *Table) ([]byte, error) {
	ser := &bcs.Serializer{}
	writeLoc(ser, t.Definition)

	ser.Bool(t.Module != nil)
	if t.Module != nil {
		ser.FixedBytes(t.Module.Address[:])
		ser.WriteString(t.Module.Name)
	}

	ser.Uleb128(uint32(len(t.Structs)))
	for _, idx := range sortedKeys(t.Structs) {
		s := t.Structs[idx]
		ser.U16(idx)
		writeLoc(ser, s.Definition)
		writeNames(ser, s.TypeParams)
		ser.Uleb128(uint32(len(s.Fields)))
		for _, l := range s.Fields {
			writeLoc(ser, l)
		}
	}

	ser.Uleb128(uint32(len(t.Functions)))
	for _, idx := range sortedKeys(t.Functions) {
		f := t.Functions[idx]
		ser.U16(idx)
		writeLoc(ser, f.Definition)
		writeNames(ser, f.TypeParams)
		writeNames(ser, f.Params)
		writeNames(ser, f.Locals)
		ser.Uleb128(uint32(len(f.Code)))
		for _, e := range f.Code {
			ser.U16(e.Offset)
			writeLoc(ser, e.Loc)
		}
		ser.Bool(f.Native)
	}

	ser.Uleb128(uint32(len(t.Constants)))
	for _, name := range sortedKeys(t.Constants) {
		ser.WriteString(name)
		ser.U16(t.Constants[name])
	}

	if err := ser.Error(); err != nil {
		return nil, err
	}
	return ser.ToBytes(), nil
}

// readLen reads a sequence length and rejects lengths that cannot fit in the
// remaining input, so corrupt data fails fast instead of looping.
func readLen(des *bcs.Deserializer) int {
	n := int(des.Uleb128())
	if des.Error() == nil && n > des.Remaining() {
		des.SetError(fmt.Errorf("sequence length %d exceeds remaining %d bytes", n, des.Remaining()))
		return 0
	}
	return n
}

func readLoc(des *bcs.Deserializer) Loc {
	var l Loc
	copy(l.FileHash[:], des.ReadFixedBytes(len(l.FileHash)))
	l.Start = des.U32()
	l.End = des.U32()
	return l
}

func writeLoc(ser *bcs.Serializer, l Loc) {
	ser.FixedBytes(l.FileHash[:])
	ser.U32(l.Start)
	ser.U32(l.End)
}

func readNames(des *bcs.Deserializer) []SourceName {
	var out []SourceName
	for n := readLen(des); n > 0 && des.Error() == nil; n-- {
		name := des.ReadString()
		out = append(out, SourceName{Name: name, Loc: readLoc(des)})
	}
	return out
}

func writeNames(ser *bcs.Serializer, names []SourceName) {
	ser.Uleb128(uint32(len(names)))
	for _, n := range names {
		ser.WriteString(n.Name)
		writeLoc(ser, n.Loc)
	}
}
