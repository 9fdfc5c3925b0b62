package quote

import (
	"encoding/base64"
	"errors"
	"math"
	"reflect"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rickgao/quote-stream/internal/wire"
)

// tslaFrame is a captured frame for TSLA during regular hours.
const tslaFrame = "CgRUU0xBFR8FKUQYoMyD1ZVeKgNOTVMwCDgBRSLND8BIpvnwDmXAo3jB2AEE"

func encodeFrame(raw []byte) []byte {
	return []byte(base64.StdEncoding.EncodeToString(raw))
}

func TestDecode_TSLA(t *testing.T) {
	q, err := Decode([]byte(tslaFrame))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if id, ok := q.Identifier(); !ok || id != "TSLA" {
		t.Errorf("Identifier() = %q, %v, want TSLA", id, ok)
	}
	if ms, ok := q.Int64(FieldTime); !ok || ms != 1617815434000 {
		t.Errorf("Int64(FieldTime) = %d, %v, want 1617815434000", ms, ok)
	}
	if ts, ok := q.Time(); !ok || ts.UnixMilli() != 1617815434000 {
		t.Errorf("Time() = %v, %v", ts, ok)
	}
	if qt, ok := q.QuoteType(); !ok || qt != QuoteTypeEquity {
		t.Errorf("QuoteType() = %v, %v, want EQUITY", qt, ok)
	}
	if ms, ok := q.MarketState(); !ok || ms != MarketStateRegular {
		t.Errorf("MarketState() = %v, %v, want REGULAR", ms, ok)
	}
	if ph, ok := q.PriceHint(); !ok || ph != PriceHintBuy {
		t.Errorf("PriceHint() = %v, %v, want BUY", ph, ok)
	}
	if ex, ok := q.Exchange(); !ok || ex != "NMS" {
		t.Errorf("Exchange() = %q, %v, want NMS", ex, ok)
	}
	if vol, ok := q.DayVolume(); !ok || vol != 15605331 {
		t.Errorf("DayVolume() = %d, %v, want 15605331", vol, ok)
	}

	floats := []struct {
		field Field
		want  float64
	}{
		{FieldPrice, 676.08001708984375},
		{FieldChange, -15.53997802734375},
		{FieldChangePercent, -2.2468953132629395},
	}
	for _, f := range floats {
		got, ok := q.Float32(f.field)
		if !ok {
			t.Errorf("Float32(%s) unset", f.field)
			continue
		}
		if math.Abs(float64(got)-f.want) > 1e-9 {
			t.Errorf("Float32(%s) = %v, want %v", f.field, got, f.want)
		}
	}

	if q.Len() != 10 {
		t.Errorf("Len() = %d, want 10", q.Len())
	}
}

func TestDecode_TSLA_UnsetFields(t *testing.T) {
	q, err := Decode([]byte(tslaFrame))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if _, ok := q.Currency(); ok {
		t.Error("Currency() should be unset")
	}
	if v, ok := q.Bid(); ok {
		t.Errorf("Bid() = %v, should be unset", v)
	}
	if _, ok := q.OptionType(); ok {
		t.Error("OptionType() should be unset")
	}
	if q.Has(FieldOpenInterest) {
		t.Error("Has(FieldOpenInterest) = true, want false")
	}
}

func TestPresentFields_TSLA(t *testing.T) {
	got, err := PresentFields([]byte(tslaFrame))
	if err != nil {
		t.Fatalf("PresentFields failed: %v", err)
	}

	want := []string{
		"identifier", "price", "time", "exchange", "quoteType",
		"marketState", "changePercent", "dayVolume", "change", "priceHint",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PresentFields() = %v, want %v", got, want)
	}
}

func TestDecode_FreshIdentityPerFrame(t *testing.T) {
	a, err := Decode([]byte(tslaFrame))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	b, err := Decode([]byte(tslaFrame))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if a.ID() == b.ID() {
		t.Errorf("two decodes share ID %s", a.ID())
	}
}

func TestDecode_OnlyUnknownFields(t *testing.T) {
	var raw []byte
	raw = protowire.AppendTag(raw, 40, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 12345)
	raw = protowire.AppendTag(raw, 41, protowire.BytesType)
	raw = protowire.AppendString(raw, "future field")
	raw = protowire.AppendTag(raw, 42, protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, 1)
	raw = protowire.AppendTag(raw, 43, protowire.StartGroupType)
	raw = protowire.AppendTag(raw, 1, protowire.Fixed32Type)
	raw = protowire.AppendFixed32(raw, 9)
	raw = protowire.AppendTag(raw, 43, protowire.EndGroupType)

	q, err := Decode(encodeFrame(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0 (fields %v)", q.Len(), q.Fields())
	}

	names, err := PresentFields(encodeFrame(raw))
	if err != nil {
		t.Fatalf("PresentFields failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("PresentFields() = %v, want none", names)
	}
}

func TestDecode_EmptyFrame(t *testing.T) {
	q, err := Decode([]byte(""))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestDecode_UnknownFieldsBetweenKnown(t *testing.T) {
	var raw []byte
	raw = protowire.AppendTag(raw, 99, protowire.BytesType)
	raw = protowire.AppendString(raw, "ignored")
	raw = protowire.AppendTag(raw, protowire.Number(FieldIdentifier), protowire.BytesType)
	raw = protowire.AppendString(raw, "BTC-USD")
	raw = protowire.AppendTag(raw, 100, protowire.Fixed32Type)
	raw = protowire.AppendFixed32(raw, 1)
	raw = protowire.AppendTag(raw, protowire.Number(FieldMarketCap), protowire.Fixed64Type)
	raw = protowire.AppendFixed64(raw, math.Float64bits(1.1e12))

	q, err := Decode(encodeFrame(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if id, _ := q.Identifier(); id != "BTC-USD" {
		t.Errorf("Identifier() = %q, want BTC-USD", id)
	}
	if mc, ok := q.MarketCap(); !ok || mc != 1.1e12 {
		t.Errorf("MarketCap() = %v, %v, want 1.1e12", mc, ok)
	}
	if !reflect.DeepEqual(q.Fields(), []Field{FieldIdentifier, FieldMarketCap}) {
		t.Errorf("Fields() = %v", q.Fields())
	}
}

func TestDecode_WrongWireTypeIsSkipped(t *testing.T) {
	var raw []byte
	// price should be fixed32; a varint is not a price.
	raw = protowire.AppendTag(raw, protowire.Number(FieldPrice), protowire.VarintType)
	raw = protowire.AppendVarint(raw, 7)
	raw = protowire.AppendTag(raw, protowire.Number(FieldExchange), protowire.BytesType)
	raw = protowire.AppendString(raw, "CCC")

	q, err := Decode(encodeFrame(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if q.Has(FieldPrice) {
		t.Error("price with wrong wire type should be skipped")
	}
	if ex, _ := q.Exchange(); ex != "CCC" {
		t.Errorf("Exchange() = %q, want CCC", ex)
	}
}

func TestDecode_RepeatedFieldLastWins(t *testing.T) {
	var raw []byte
	for _, p := range []float32{1.5, 2.5} {
		raw = protowire.AppendTag(raw, protowire.Number(FieldPrice), protowire.Fixed32Type)
		raw = protowire.AppendFixed32(raw, math.Float32bits(p))
	}

	q, err := Decode(encodeFrame(raw))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if p, _ := q.Price(); p != 2.5 {
		t.Errorf("Price() = %v, want 2.5", p)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}

	names, err := PresentFields(encodeFrame(raw))
	if err != nil {
		t.Fatalf("PresentFields failed: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"price", "price"}) {
		t.Errorf("PresentFields() = %v", names)
	}
}

func TestDecode_EnumMapping(t *testing.T) {
	tests := []struct {
		name   string
		field  Field
		value  uint64
		zigzag bool
		check  func(Quote) (string, bool)
		want   string
	}{
		{"quote type crypto", FieldQuoteType, 41, false, enumString(Quote.QuoteType), "CRYPTOCURRENCY"},
		{"quote type unmapped", FieldQuoteType, 99, false, enumString(Quote.QuoteType), "UNDEFINED"},
		{"quote type negative", FieldQuoteType, uint64(math.MaxUint64), false, enumString(Quote.QuoteType), "UNDEFINED"},
		{"market state pre", FieldMarketState, 0, false, enumString(Quote.MarketState), "PRE"},
		{"market state extended", FieldMarketState, 3, false, enumString(Quote.MarketState), "EXTENDED"},
		{"market state unmapped", FieldMarketState, 9, false, enumString(Quote.MarketState), "UNDEFINED"},
		{"option call", FieldOptionsType, 0, false, enumString(Quote.OptionType), "CALL"},
		{"option put", FieldOptionsType, 1, false, enumString(Quote.OptionType), "PUT"},
		{"option unmapped", FieldOptionsType, 5, false, enumString(Quote.OptionType), "UNDEFINED"},
		{"price hint sell", FieldPriceHint, 5, true, enumString(Quote.PriceHint), "SELL"},
		{"price hint zero", FieldPriceHint, 0, true, enumString(Quote.PriceHint), "UNDEFINED"},
		{"price hint unmapped", FieldPriceHint, 17, true, enumString(Quote.PriceHint), "UNDEFINED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.value
			if tt.zigzag {
				v = protowire.EncodeZigZag(int64(v))
			}
			raw := protowire.AppendTag(nil, protowire.Number(tt.field), protowire.VarintType)
			raw = protowire.AppendVarint(raw, v)

			q, err := Decode(encodeFrame(raw))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			got, ok := tt.check(q)
			if !ok {
				t.Fatalf("%s unset", tt.field)
			}
			if got != tt.want {
				t.Errorf("%s = %s, want %s", tt.field, got, tt.want)
			}
		})
	}
}

func enumString[T interface{ String() string }](get func(Quote) (T, bool)) func(Quote) (string, bool) {
	return func(q Quote) (string, bool) {
		v, ok := get(q)
		return v.String(), ok
	}
}

func TestDecode_BadBase64(t *testing.T) {
	_, err := Decode([]byte("!!not base64!!"))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("Decode() error = %v, want ErrMalformedFrame", err)
	}

	_, err = PresentFields([]byte("%%%"))
	if !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("PresentFields() error = %v, want ErrMalformedFrame", err)
	}
}

func TestDecode_UnpaddedBase64(t *testing.T) {
	raw := protowire.AppendTag(nil, protowire.Number(FieldIdentifier), protowire.BytesType)
	raw = protowire.AppendString(raw, "AAPL")
	frame := base64.RawStdEncoding.EncodeToString(raw)

	q, err := Decode([]byte(frame))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if id, _ := q.Identifier(); id != "AAPL" {
		t.Errorf("Identifier() = %q, want AAPL", id)
	}
}

// Every cut of the TSLA payload either lands on a field boundary and decodes,
// or fails as a malformed frame.
func TestDecodeRaw_Truncated(t *testing.T) {
	raw, err := base64.StdEncoding.DecodeString(tslaFrame)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	boundaries := map[int]int{0: 0}
	for off, count := 0, 0; off < len(raw); {
		_, _, n := protowire.ConsumeField(raw[off:])
		if n < 0 {
			t.Fatalf("fixture is not well formed at %d", off)
		}
		off += n
		count++
		boundaries[off] = count
	}

	for cut := 0; cut < len(raw); cut++ {
		q, err := DecodeRaw(raw[:cut])
		want, atBoundary := boundaries[cut]

		if atBoundary {
			if err != nil {
				t.Errorf("cut %d: unexpected error: %v", cut, err)
			} else if q.Len() != want {
				t.Errorf("cut %d: Len() = %d, want %d", cut, q.Len(), want)
			}
			continue
		}

		if !errors.Is(err, ErrMalformedFrame) {
			t.Errorf("cut %d: error = %v, want ErrMalformedFrame", cut, err)
		}
		if errors.Is(err, wire.ErrOutOfRange) {
			t.Errorf("cut %d: reader error escaped the decoder: %v", cut, err)
		}
	}
}

func TestDecodeRaw_CorruptLength(t *testing.T) {
	// identifier claims 200 bytes.
	raw := []byte{0x0a, 0xc8, 0x01, 'T', 'S'}
	if _, err := DecodeRaw(raw); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("DecodeRaw() error = %v, want ErrMalformedFrame", err)
	}
	if _, err := PresentFields(encodeFrame(raw)); !errors.Is(err, ErrMalformedFrame) {
		t.Errorf("PresentFields() error = %v, want ErrMalformedFrame", err)
	}
}
