package quote

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/rickgao/quote-stream/internal/wire"
)

// ErrMalformedFrame is returned for frames that are not valid base64 or whose
// payload is truncated or corrupt. Callers drop the frame and carry on.
var ErrMalformedFrame = errors.New("quote: malformed frame")

// Decode unwraps a base64 text frame and decodes it into a Quote.
func Decode(frame []byte) (Quote, error) {
	raw, err := unwrap(frame)
	if err != nil {
		return Quote{}, err
	}
	return DecodeRaw(raw)
}

// DecodeRaw decodes an already unwrapped payload.
func DecodeRaw(raw []byte) (Quote, error) {
	q := Quote{id: uuid.New()}
	r := wire.NewReader(raw)

	for !r.Done() {
		n, typ, err := r.ReadTag()
		if err != nil {
			return Quote{}, malformed(r, err)
		}

		field := Field(n)
		if !field.Known() || typ != field.wireType() {
			if err := r.Skip(typ); err != nil {
				return Quote{}, malformed(r, err)
			}
			continue
		}

		e, err := readEntry(r, field)
		if err != nil {
			return Quote{}, malformed(r, err)
		}
		q.set(e)
	}

	return q, nil
}

// PresentFields scans a frame and returns the names of the schema fields it
// carries, in wire order, without materialising a Quote. Unknown field
// numbers are skipped and not listed.
func PresentFields(frame []byte) ([]string, error) {
	raw, err := unwrap(frame)
	if err != nil {
		return nil, err
	}

	var names []string
	r := wire.NewReader(raw)
	for !r.Done() {
		n, typ, err := r.ReadTag()
		if err != nil {
			return nil, malformed(r, err)
		}
		if name := Field(n).Name(); name != "" {
			names = append(names, name)
		}
		if err := r.Skip(typ); err != nil {
			return nil, malformed(r, err)
		}
	}
	return names, nil
}

func readEntry(r *wire.Reader, field Field) (entry, error) {
	e := entry{field: field}

	switch field.Kind() {
	case KindText:
		b, err := r.ReadLengthDelimited()
		if err != nil {
			return e, err
		}
		e.text = string(b)

	case KindFloat32:
		v, err := r.ReadFixed32AsFloat()
		if err != nil {
			return e, err
		}
		e.num = uint64(math.Float32bits(v))

	case KindFloat64:
		v, err := r.ReadFixed64AsDouble()
		if err != nil {
			return e, err
		}
		e.num = math.Float64bits(v)

	case KindInt64:
		v, err := r.ReadSint64()
		if err != nil {
			return e, err
		}
		e.num = uint64(v)

	case KindEnum:
		v, err := readEnum(r, field)
		if err != nil {
			return e, err
		}
		e.num = uint64(v)
	}

	return e, nil
}

// readEnum maps an enum field into its Go enumeration. priceHint travels as
// a zig-zag sint64; the others are plain int32 varints.
func readEnum(r *wire.Reader, field Field) (int32, error) {
	if field == FieldPriceHint {
		v, err := r.ReadSint64()
		if err != nil {
			return 0, err
		}
		return int32(priceHintFromWire(v)), nil
	}

	v, err := r.ReadVarint()
	if err != nil {
		return 0, err
	}
	switch field {
	case FieldQuoteType:
		return int32(quoteTypeFromWire(v)), nil
	case FieldMarketState:
		return int32(marketStateFromWire(v)), nil
	case FieldOptionsType:
		return int32(optionTypeFromWire(v)), nil
	}
	return 0, fmt.Errorf("no enumeration for field %s", field)
}

func unwrap(frame []byte) ([]byte, error) {
	text := bytes.TrimSpace(frame)
	raw := make([]byte, base64.RawStdEncoding.DecodedLen(len(text)))

	n, err := base64.StdEncoding.Decode(raw, text)
	if err != nil {
		// Some publishers drop the padding.
		n, err = base64.RawStdEncoding.Decode(raw, text)
		if err != nil {
			return nil, fmt.Errorf("%w: base64: %v", ErrMalformedFrame, err)
		}
	}
	return raw[:n], nil
}

// malformed converts a reader fault into ErrMalformedFrame. The reader error
// is formatted, not wrapped, so it never escapes this package.
func malformed(r *wire.Reader, err error) error {
	return fmt.Errorf("%w: offset %d of %d: %v", ErrMalformedFrame, r.Pos(), r.Len(), err)
}
