package quote

import "github.com/rickgao/quote-stream/internal/wire"

// Field is a wire field number of the pricing schema. The numbering is
// fixed: reordering it breaks compatibility with every recorded frame.
type Field int

// Schema fields, in wire order.
const (
	FieldIdentifier Field = iota + 1
	FieldPrice
	FieldTime
	FieldCurrency
	FieldExchange
	FieldQuoteType
	FieldMarketState
	FieldChangePercent
	FieldDayVolume
	FieldDayHigh
	FieldDayLow
	FieldChange
	FieldShortName
	FieldExpireDate
	FieldOpenPrice
	FieldPreviousClose
	FieldStrikePrice
	FieldUnderlyingSymbol
	FieldOpenInterest
	FieldOptionsType
	FieldMiniOption
	FieldLastSize
	FieldBid
	FieldBidSize
	FieldAsk
	FieldAskSize
	FieldPriceHint
	FieldVol24h
	FieldVolAllCurrencies
	FieldFromCurrency
	FieldLastMarket
	FieldCirculatingSupply
	FieldMarketCap
)

// NumFields is the number of fields in the schema.
const NumFields = int(FieldMarketCap)

// Kind is the value type of a field.
type Kind uint8

const (
	KindText    Kind = iota + 1 // length-delimited UTF-8
	KindFloat32                 // fixed32 IEEE-754
	KindFloat64                 // fixed64 IEEE-754
	KindInt64                   // zig-zag varint
	KindEnum                    // varint mapped into a closed enumeration
)

type fieldSpec struct {
	name string
	kind Kind
}

var schema = [NumFields + 1]fieldSpec{
	FieldIdentifier:        {"identifier", KindText},
	FieldPrice:             {"price", KindFloat32},
	FieldTime:              {"time", KindInt64},
	FieldCurrency:          {"currency", KindText},
	FieldExchange:          {"exchange", KindText},
	FieldQuoteType:         {"quoteType", KindEnum},
	FieldMarketState:       {"marketState", KindEnum},
	FieldChangePercent:     {"changePercent", KindFloat32},
	FieldDayVolume:         {"dayVolume", KindInt64},
	FieldDayHigh:           {"dayHigh", KindFloat32},
	FieldDayLow:            {"dayLow", KindFloat32},
	FieldChange:            {"change", KindFloat32},
	FieldShortName:         {"shortName", KindText},
	FieldExpireDate:        {"expireDate", KindInt64},
	FieldOpenPrice:         {"openPrice", KindFloat32},
	FieldPreviousClose:     {"previousClose", KindFloat32},
	FieldStrikePrice:       {"strikePrice", KindFloat32},
	FieldUnderlyingSymbol:  {"underlyingSymbol", KindText},
	FieldOpenInterest:      {"openInterest", KindInt64},
	FieldOptionsType:       {"optionsType", KindEnum},
	FieldMiniOption:        {"miniOption", KindInt64},
	FieldLastSize:          {"lastSize", KindInt64},
	FieldBid:               {"bid", KindFloat32},
	FieldBidSize:           {"bidSize", KindInt64},
	FieldAsk:               {"ask", KindFloat32},
	FieldAskSize:           {"askSize", KindInt64},
	FieldPriceHint:         {"priceHint", KindEnum},
	FieldVol24h:            {"vol24hr", KindInt64},
	FieldVolAllCurrencies:  {"volAllCurrencies", KindInt64},
	FieldFromCurrency:      {"fromCurrency", KindText},
	FieldLastMarket:        {"lastMarket", KindText},
	FieldCirculatingSupply: {"circulatingSupply", KindFloat64},
	FieldMarketCap:         {"marketCap", KindFloat64},
}

// Known reports whether f is part of the schema.
func (f Field) Known() bool {
	return f >= FieldIdentifier && f <= FieldMarketCap
}

// Name returns the schema name of f, or "" for an unknown field.
func (f Field) Name() string {
	if !f.Known() {
		return ""
	}
	return schema[f].name
}

// Kind returns the value type of f, or 0 for an unknown field.
func (f Field) Kind() Kind {
	if !f.Known() {
		return 0
	}
	return schema[f].kind
}

func (f Field) String() string {
	if name := f.Name(); name != "" {
		return name
	}
	return "unknown"
}

// wireType is the encoding a well-formed frame uses for f.
func (f Field) wireType() wire.Type {
	switch f.Kind() {
	case KindText:
		return wire.TypeBytes
	case KindFloat32:
		return wire.TypeFixed32
	case KindFloat64:
		return wire.TypeFixed64
	default:
		return wire.TypeVarint
	}
}

// FieldByName looks up a field by its schema name.
func FieldByName(name string) (Field, bool) {
	for f := FieldIdentifier; f <= FieldMarketCap; f++ {
		if schema[f].name == name {
			return f, true
		}
	}
	return 0, false
}
