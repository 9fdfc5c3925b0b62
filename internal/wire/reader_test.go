package wire

import (
	"errors"
	"math"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestReader_ReadVarint(t *testing.T) {
	tests := []struct {
		name    string
		buf     []byte
		want    uint32
		wantPos int
		wantErr error
	}{
		{name: "single byte", buf: []byte{0x01}, want: 1, wantPos: 1},
		{name: "two bytes", buf: []byte{0xac, 0x02}, want: 300, wantPos: 2},
		{name: "max uint32", buf: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}, want: math.MaxUint32, wantPos: 5},
		{name: "fifth group keeps low bits only", buf: []byte{0xff, 0xff, 0xff, 0xff, 0x7f}, want: math.MaxUint32, wantPos: 5},
		{name: "negative one widened", buf: protowire.AppendVarint(nil, math.MaxUint64), want: math.MaxUint32, wantPos: 10},
		{name: "negative two widened", buf: protowire.AppendVarint(nil, math.MaxUint64-1), want: 0xfffffffe, wantPos: 10},
		{name: "trailing bytes untouched", buf: []byte{0x05, 0x06}, want: 5, wantPos: 1},
		{name: "empty", buf: nil, wantErr: ErrOutOfRange},
		{name: "truncated", buf: []byte{0x80}, wantErr: ErrOutOfRange},
		{name: "truncated after fifth group", buf: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, wantErr: ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.buf)
			got, err := r.ReadVarint()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadVarint() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadVarint() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadVarint() = %d, want %d", got, tt.want)
			}
			if r.Pos() != tt.wantPos {
				t.Errorf("Pos() = %d, want %d", r.Pos(), tt.wantPos)
			}
		})
	}
}

func TestReader_ReadTag(t *testing.T) {
	buf := protowire.AppendTag(nil, 27, protowire.VarintType)

	r := NewReader(buf)
	field, typ, err := r.ReadTag()
	if err != nil {
		t.Fatalf("ReadTag() unexpected error: %v", err)
	}
	if field != 27 {
		t.Errorf("field = %d, want 27", field)
	}
	if typ != TypeVarint {
		t.Errorf("type = %d, want %d", typ, TypeVarint)
	}
	if !r.Done() {
		t.Errorf("Done() = false after reading the whole tag")
	}
}

func TestReader_ReadSint64(t *testing.T) {
	tests := []struct {
		name string
		want int64
	}{
		{"zero", 0},
		{"epoch millis", 1617815434000},
		{"negative", -42},
		{"min", math.MinInt64},
		{"max", math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := protowire.AppendVarint(nil, protowire.EncodeZigZag(tt.want))
			r := NewReader(buf)
			got, err := r.ReadSint64()
			if err != nil {
				t.Fatalf("ReadSint64() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadSint64() = %d, want %d", got, tt.want)
			}
			if r.Pos() != len(buf) {
				t.Errorf("Pos() = %d, want %d", r.Pos(), len(buf))
			}
		})
	}
}

func TestReader_ReadSint64_Truncated(t *testing.T) {
	r := NewReader([]byte{0xa0, 0xcc, 0x83})
	if _, err := r.ReadSint64(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ReadSint64() error = %v, want ErrOutOfRange", err)
	}
}

func TestReader_ReadLengthDelimited(t *testing.T) {
	buf := protowire.AppendBytes(nil, []byte("TSLA"))
	buf = append(buf, 0x08)

	r := NewReader(buf)
	got, err := r.ReadLengthDelimited()
	if err != nil {
		t.Fatalf("ReadLengthDelimited() unexpected error: %v", err)
	}
	if string(got) != "TSLA" {
		t.Errorf("ReadLengthDelimited() = %q, want %q", got, "TSLA")
	}
	if r.Pos() != 5 {
		t.Errorf("Pos() = %d, want 5", r.Pos())
	}
}

func TestReader_ReadLengthDelimited_Truncated(t *testing.T) {
	// Declares 10 bytes but carries 3.
	r := NewReader([]byte{0x0a, 'N', 'M', 'S'})
	if _, err := r.ReadLengthDelimited(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("ReadLengthDelimited() error = %v, want ErrOutOfRange", err)
	}
}

func TestReader_ReadFixed(t *testing.T) {
	buf := protowire.AppendFixed32(nil, math.Float32bits(676.08))
	buf = protowire.AppendFixed64(buf, math.Float64bits(-2.5e12))

	r := NewReader(buf)
	f, err := r.ReadFixed32AsFloat()
	if err != nil {
		t.Fatalf("ReadFixed32AsFloat() unexpected error: %v", err)
	}
	if f != float32(676.08) {
		t.Errorf("ReadFixed32AsFloat() = %v, want %v", f, float32(676.08))
	}

	d, err := r.ReadFixed64AsDouble()
	if err != nil {
		t.Fatalf("ReadFixed64AsDouble() unexpected error: %v", err)
	}
	if d != -2.5e12 {
		t.Errorf("ReadFixed64AsDouble() = %v, want %v", d, -2.5e12)
	}

	if _, err := r.ReadFixed32AsFloat(); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("read past end error = %v, want ErrOutOfRange", err)
	}
}

func TestReader_Skip(t *testing.T) {
	group := protowire.AppendTag(nil, 2, protowire.VarintType)
	group = protowire.AppendVarint(group, 150)
	group = protowire.AppendTag(group, 3, protowire.StartGroupType)
	group = protowire.AppendTag(group, 4, protowire.Fixed32Type)
	group = protowire.AppendFixed32(group, 7)
	group = protowire.AppendTag(group, 3, protowire.EndGroupType)
	group = protowire.AppendTag(group, 5, protowire.BytesType)
	group = protowire.AppendString(group, "nested")
	group = protowire.AppendTag(group, 1, protowire.EndGroupType)

	tests := []struct {
		name string
		typ  Type
		buf  []byte
	}{
		{"varint", TypeVarint, protowire.AppendVarint(nil, 1<<40)},
		{"fixed64", TypeFixed64, protowire.AppendFixed64(nil, 1)},
		{"bytes", TypeBytes, protowire.AppendString(nil, "exchange")},
		{"group", TypeStartGroup, group},
		{"fixed32", TypeFixed32, protowire.AppendFixed32(nil, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := append(append([]byte{}, tt.buf...), 0xee)
			r := NewReader(buf)
			if err := r.Skip(tt.typ); err != nil {
				t.Fatalf("Skip(%d) unexpected error: %v", tt.typ, err)
			}
			if r.Pos() != len(tt.buf) {
				t.Errorf("Pos() = %d, want %d", r.Pos(), len(tt.buf))
			}
		})
	}
}

func TestReader_Skip_UnknownTypeIsNoop(t *testing.T) {
	for _, typ := range []Type{TypeEndGroup, 6, 7} {
		r := NewReader([]byte{0x01, 0x02})
		if err := r.Skip(typ); err != nil {
			t.Errorf("Skip(%d) unexpected error: %v", typ, err)
		}
		if r.Pos() != 0 {
			t.Errorf("Skip(%d) moved cursor to %d", typ, r.Pos())
		}
	}
}

func TestReader_Skip_Truncated(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		buf  []byte
	}{
		{"varint", TypeVarint, []byte{0x80, 0x80}},
		{"fixed64", TypeFixed64, []byte{1, 2, 3}},
		{"bytes", TypeBytes, []byte{0x05, 'a'}},
		{"unterminated group", TypeStartGroup, protowire.AppendVarint(protowire.AppendTag(nil, 2, protowire.VarintType), 1)},
		{"fixed32", TypeFixed32, []byte{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.buf)
			if err := r.Skip(tt.typ); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("Skip(%d) error = %v, want ErrOutOfRange", tt.typ, err)
			}
			if r.Pos() > len(tt.buf) {
				t.Errorf("cursor %d ran past buffer length %d", r.Pos(), len(tt.buf))
			}
		})
	}
}
