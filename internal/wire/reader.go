package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrOutOfRange is returned when a read would run past the end of the buffer.
var ErrOutOfRange = errors.New("wire: index out of range")

// Type is the 3-bit wire type carried in the low bits of every tag.
type Type uint8

// Wire types.
const (
	TypeVarint     Type = 0
	TypeFixed64    Type = 1
	TypeBytes      Type = 2
	TypeStartGroup Type = 3
	TypeEndGroup   Type = 4
	TypeFixed32    Type = 5
)

// Reader is a forward-only cursor over an encoded buffer.
// It is not safe for concurrent use.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader positioned at the start of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the total buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Done reports whether the cursor has reached the end of the buffer.
func (r *Reader) Done() bool { return r.pos >= len(r.buf) }

// ReadTag reads a field tag and splits it into field number and wire type.
func (r *Reader) ReadTag() (field int, typ Type, err error) {
	tag, err := r.ReadVarint()
	if err != nil {
		return 0, 0, err
	}
	return int(tag >> 3), Type(tag & 7), nil
}

// ReadVarint decodes an unsigned varint of at most five groups, truncated
// to 32 bits. The fifth group contributes only its low four bits.
//
// A fifth group that still carries the continuation bit belongs to a
// ten-byte encoding (a negative int32 widened to 64 bits). The low 32 bits
// are already complete at that point, so the remaining five bytes are
// stepped over without being inspected.
func (r *Reader) ReadVarint() (uint32, error) {
	var value uint32
	for i := 0; i < 4; i++ {
		b, err := r.readByte()
		if err != nil {
			return 0, err
		}
		value |= uint32(b&0x7f) << (7 * i)
		if b < 0x80 {
			return value, nil
		}
	}

	b, err := r.readByte()
	if err != nil {
		return 0, err
	}
	value |= uint32(b&0x0f) << 28
	if b < 0x80 {
		return value, nil
	}

	if err := r.advance(5); err != nil {
		return 0, err
	}
	return value, nil
}

// ReadSint64 decodes a full 64-bit varint and reverses zig-zag encoding.
func (r *Reader) ReadSint64() (int64, error) {
	v, n := protowire.ConsumeVarint(r.buf[r.pos:])
	if n < 0 {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, protowire.ParseError(n))
	}
	r.pos += n
	return protowire.DecodeZigZag(v), nil
}

// ReadLengthDelimited reads a varint length followed by that many bytes.
// The returned slice aliases the underlying buffer.
func (r *Reader) ReadLengthDelimited() ([]byte, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	start := r.pos
	if err := r.advance(uint64(n)); err != nil {
		return nil, err
	}
	return r.buf[start:r.pos], nil
}

// ReadFixed32AsFloat reads four little-endian bytes as an IEEE-754 single.
func (r *Reader) ReadFixed32AsFloat() (float32, error) {
	start := r.pos
	if err := r.advance(4); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(r.buf[start:r.pos])), nil
}

// ReadFixed64AsDouble reads eight little-endian bytes as an IEEE-754 double.
func (r *Reader) ReadFixed64AsDouble() (float64, error) {
	start := r.pos
	if err := r.advance(8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[start:r.pos])), nil
}

// Skip steps over one value of the given wire type. Unknown wire types are
// a no-op so that newer encodings do not break older readers.
func (r *Reader) Skip(typ Type) error {
	switch typ {
	case TypeVarint:
		for {
			b, err := r.readByte()
			if err != nil {
				return err
			}
			if b&0x80 == 0 {
				return nil
			}
		}
	case TypeFixed64:
		return r.advance(8)
	case TypeBytes:
		n, err := r.ReadVarint()
		if err != nil {
			return err
		}
		return r.advance(uint64(n))
	case TypeStartGroup:
		for {
			_, inner, err := r.ReadTag()
			if err != nil {
				return err
			}
			if inner == TypeEndGroup {
				return nil
			}
			if err := r.Skip(inner); err != nil {
				return err
			}
		}
	case TypeFixed32:
		return r.advance(4)
	default:
		return nil
	}
}

func (r *Reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, ErrOutOfRange
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) advance(n uint64) error {
	if n > uint64(len(r.buf)-r.pos) {
		return ErrOutOfRange
	}
	r.pos += int(n)
	return nil
}
