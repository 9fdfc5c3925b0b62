package quote

import "fmt"

// QuoteType is the instrument class of a quote. Its numeric values match
// the wire values; any value without a mapping decodes as
// QuoteTypeUndefined.
type QuoteType int32

const (
	QuoteTypeUndefined      QuoteType = 0
	QuoteTypeAltSymbol      QuoteType = 5
	QuoteTypeHeartbeat      QuoteType = 7
	QuoteTypeEquity         QuoteType = 8
	QuoteTypeIndex          QuoteType = 9
	QuoteTypeMutualFund     QuoteType = 11
	QuoteTypeMoneyMarket    QuoteType = 12
	QuoteTypeOption         QuoteType = 13
	QuoteTypeCurrency       QuoteType = 14
	QuoteTypeWarrant        QuoteType = 15
	QuoteTypeBond           QuoteType = 17
	QuoteTypeFuture         QuoteType = 18
	QuoteTypeETF            QuoteType = 20
	QuoteTypeCommodity      QuoteType = 23
	QuoteTypeECNQuote       QuoteType = 28
	QuoteTypeCryptocurrency QuoteType = 41
	QuoteTypeIndicator      QuoteType = 42
	QuoteTypeIndustry       QuoteType = 1000
)

var quoteTypeNames = map[QuoteType]string{
	QuoteTypeUndefined:      "UNDEFINED",
	QuoteTypeAltSymbol:      "ALTSYMBOL",
	QuoteTypeHeartbeat:      "HEARTBEAT",
	QuoteTypeEquity:         "EQUITY",
	QuoteTypeIndex:          "INDEX",
	QuoteTypeMutualFund:     "MUTUALFUND",
	QuoteTypeMoneyMarket:    "MONEYMARKET",
	QuoteTypeOption:         "OPTION",
	QuoteTypeCurrency:       "CURRENCY",
	QuoteTypeWarrant:        "WARRANT",
	QuoteTypeBond:           "BOND",
	QuoteTypeFuture:         "FUTURE",
	QuoteTypeETF:            "ETF",
	QuoteTypeCommodity:      "COMMODITY",
	QuoteTypeECNQuote:       "ECNQUOTE",
	QuoteTypeCryptocurrency: "CRYPTOCURRENCY",
	QuoteTypeIndicator:      "INDICATOR",
	QuoteTypeIndustry:       "INDUSTRY",
}

func quoteTypeFromWire(v uint32) QuoteType {
	t := QuoteType(int32(v))
	if _, ok := quoteTypeNames[t]; ok {
		return t
	}
	return QuoteTypeUndefined
}

func (t QuoteType) String() string {
	if name, ok := quoteTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("QuoteType(%d)", int32(t))
}

// MarketState is the trading phase of the instrument's market. There is no
// closed state: the feed is silent while a market is closed.
type MarketState int32

const (
	MarketStateUndefined MarketState = iota
	MarketStatePre
	MarketStateRegular
	MarketStatePost
	MarketStateExtended
)

func marketStateFromWire(v uint32) MarketState {
	switch v {
	case 0:
		return MarketStatePre
	case 1:
		return MarketStateRegular
	case 2:
		return MarketStatePost
	case 3:
		return MarketStateExtended
	default:
		return MarketStateUndefined
	}
}

func (s MarketState) String() string {
	switch s {
	case MarketStatePre:
		return "PRE"
	case MarketStateRegular:
		return "REGULAR"
	case MarketStatePost:
		return "POST"
	case MarketStateExtended:
		return "EXTENDED"
	default:
		return "UNDEFINED"
	}
}

// OptionType is the kind of an option contract.
type OptionType int32

const (
	OptionTypeUndefined OptionType = iota
	OptionTypeCall
	OptionTypePut
)

func optionTypeFromWire(v uint32) OptionType {
	switch v {
	case 0:
		return OptionTypeCall
	case 1:
		return OptionTypePut
	default:
		return OptionTypeUndefined
	}
}

func (o OptionType) String() string {
	switch o {
	case OptionTypeCall:
		return "CALL"
	case OptionTypePut:
		return "PUT"
	default:
		return "UNDEFINED"
	}
}

// PriceHint is the publisher's buy/hold/sell recommendation. It changes
// rarely.
type PriceHint int32

const (
	PriceHintUndefined PriceHint = iota
	PriceHintStrongBuy
	PriceHintBuy
	PriceHintHold
	PriceHintUnderPerform
	PriceHintSell
)

func priceHintFromWire(v int64) PriceHint {
	if v >= int64(PriceHintStrongBuy) && v <= int64(PriceHintSell) {
		return PriceHint(v)
	}
	return PriceHintUndefined
}

func (h PriceHint) String() string {
	switch h {
	case PriceHintStrongBuy:
		return "STRONG_BUY"
	case PriceHintBuy:
		return "BUY"
	case PriceHintHold:
		return "HOLD"
	case PriceHintUnderPerform:
		return "UNDER_PERFORM"
	case PriceHintSell:
		return "SELL"
	default:
		return "UNDEFINED"
	}
}
