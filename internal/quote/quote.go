package quote

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// entry is one decoded field. num holds float bits, int64 bits or the
// mapped enum value depending on the field kind.
type entry struct {
	field Field
	text  string
	num   uint64
}

// Quote is a sparse, immutable record decoded from a single frame. Every
// decode produces a new Quote with its own ID, even for the same
// instrument.
type Quote struct {
	id      uuid.UUID
	entries []entry
}

// ID returns the identity assigned to this record at decode time.
func (q Quote) ID() uuid.UUID { return q.id }

// Len returns the number of fields set.
func (q Quote) Len() int { return len(q.entries) }

// Has reports whether f was present in the frame.
func (q Quote) Has(f Field) bool {
	_, ok := q.lookup(f)
	return ok
}

// Fields returns the present fields in schema order.
func (q Quote) Fields() []Field {
	fields := make([]Field, 0, len(q.entries))
	for _, e := range q.entries {
		fields = append(fields, e.field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}

// Text returns a text field. ok is false when the field is unset or not
// a text field.
func (q Quote) Text(f Field) (v string, ok bool) {
	e, ok := q.lookupKind(f, KindText)
	return e.text, ok
}

// Float32 returns a single-precision field.
func (q Quote) Float32(f Field) (v float32, ok bool) {
	e, ok := q.lookupKind(f, KindFloat32)
	return math.Float32frombits(uint32(e.num)), ok
}

// Float64 returns a double-precision field.
func (q Quote) Float64(f Field) (v float64, ok bool) {
	e, ok := q.lookupKind(f, KindFloat64)
	return math.Float64frombits(e.num), ok
}

// Int64 returns an integer field.
func (q Quote) Int64(f Field) (v int64, ok bool) {
	e, ok := q.lookupKind(f, KindInt64)
	return int64(e.num), ok
}

// Typed accessors. The bool is false when the field was not in the frame.

func (q Quote) Identifier() (string, bool)         { return q.Text(FieldIdentifier) }
func (q Quote) Price() (float32, bool)             { return q.Float32(FieldPrice) }
func (q Quote) Currency() (string, bool)           { return q.Text(FieldCurrency) }
func (q Quote) Exchange() (string, bool)           { return q.Text(FieldExchange) }
func (q Quote) ChangePercent() (float32, bool)     { return q.Float32(FieldChangePercent) }
func (q Quote) DayVolume() (int64, bool)           { return q.Int64(FieldDayVolume) }
func (q Quote) DayHigh() (float32, bool)           { return q.Float32(FieldDayHigh) }
func (q Quote) DayLow() (float32, bool)            { return q.Float32(FieldDayLow) }
func (q Quote) Change() (float32, bool)            { return q.Float32(FieldChange) }
func (q Quote) ShortName() (string, bool)          { return q.Text(FieldShortName) }
func (q Quote) OpenPrice() (float32, bool)         { return q.Float32(FieldOpenPrice) }
func (q Quote) PreviousClose() (float32, bool)     { return q.Float32(FieldPreviousClose) }
func (q Quote) StrikePrice() (float32, bool)       { return q.Float32(FieldStrikePrice) }
func (q Quote) UnderlyingSymbol() (string, bool)   { return q.Text(FieldUnderlyingSymbol) }
func (q Quote) OpenInterest() (int64, bool)        { return q.Int64(FieldOpenInterest) }
func (q Quote) MiniOption() (int64, bool)          { return q.Int64(FieldMiniOption) }
func (q Quote) LastSize() (int64, bool)            { return q.Int64(FieldLastSize) }
func (q Quote) Bid() (float32, bool)               { return q.Float32(FieldBid) }
func (q Quote) BidSize() (int64, bool)             { return q.Int64(FieldBidSize) }
func (q Quote) Ask() (float32, bool)               { return q.Float32(FieldAsk) }
func (q Quote) AskSize() (int64, bool)             { return q.Int64(FieldAskSize) }
func (q Quote) Vol24h() (int64, bool)              { return q.Int64(FieldVol24h) }
func (q Quote) VolAllCurrencies() (int64, bool)    { return q.Int64(FieldVolAllCurrencies) }
func (q Quote) FromCurrency() (string, bool)       { return q.Text(FieldFromCurrency) }
func (q Quote) LastMarket() (string, bool)         { return q.Text(FieldLastMarket) }
func (q Quote) CirculatingSupply() (float64, bool) { return q.Float64(FieldCirculatingSupply) }
func (q Quote) MarketCap() (float64, bool)         { return q.Float64(FieldMarketCap) }

// Time returns the exchange timestamp (epoch milliseconds on the wire).
func (q Quote) Time() (time.Time, bool) {
	ms, ok := q.Int64(FieldTime)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// ExpireDate returns the option expiry (epoch seconds on the wire).
func (q Quote) ExpireDate() (time.Time, bool) {
	s, ok := q.Int64(FieldExpireDate)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(s, 0).UTC(), true
}

// QuoteType returns the decoded quote type enum.
func (q Quote) QuoteType() (QuoteType, bool) {
	e, ok := q.lookupKind(FieldQuoteType, KindEnum)
	return QuoteType(int32(e.num)), ok
}

// MarketState returns the trading session the quote was taken in.
func (q Quote) MarketState() (MarketState, bool) {
	e, ok := q.lookupKind(FieldMarketState, KindEnum)
	return MarketState(int32(e.num)), ok
}

// OptionType returns CALL or PUT for option quotes.
func (q Quote) OptionType() (OptionType, bool) {
	e, ok := q.lookupKind(FieldOptionsType, KindEnum)
	return OptionType(int32(e.num)), ok
}

// PriceHint returns the display precision hint.
func (q Quote) PriceHint() (PriceHint, bool) {
	e, ok := q.lookupKind(FieldPriceHint, KindEnum)
	return PriceHint(int32(e.num)), ok
}

// String renders the quote as "EQUITY TSLA - Price: 676.08, NMS : REGULAR".
func (q Quote) String() string {
	qt, _ := q.QuoteType()
	ms, _ := q.MarketState()
	id, _ := q.Identifier()
	ex, _ := q.Exchange()

	price := "-"
	if p, ok := q.Price(); ok {
		price = fmt.Sprintf("%.2f", p)
	}
	return fmt.Sprintf("%s %s - Price: %s, %s : %s", qt, id, price, ex, ms)
}

func (q Quote) lookup(f Field) (entry, bool) {
	for _, e := range q.entries {
		if e.field == f {
			return e, true
		}
	}
	return entry{}, false
}

func (q Quote) lookupKind(f Field, kind Kind) (entry, bool) {
	if f.Kind() != kind {
		return entry{}, false
	}
	return q.lookup(f)
}

// set records a decoded field. A repeated field replaces the earlier value.
func (q *Quote) set(e entry) {
	for i := range q.entries {
		if q.entries[i].field == e.field {
			q.entries[i] = e
			return
		}
	}
	q.entries = append(q.entries, e)
}
