package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/quote-stream/internal/quote"
)

// QuoteTick is one decoded quote as a storage row. Every schema field has a
// column; a nil pointer means the frame did not carry it.
type QuoteTick struct {
	QuoteID    uuid.UUID `json:"quote_id" parquet:"quote_id"`       // Identity assigned at decode
	Symbol     string    `json:"symbol" parquet:"symbol"`           // Instrument identifier ("" if absent)
	ReceivedAt int64     `json:"received_at" parquet:"received_at"` // Collector receive time (µs since epoch)

	ExchangeTS  *int64   `json:"exchange_ts,omitempty" parquet:"exchange_ts"` // Quote time (µs since epoch)
	Price       *float64 `json:"price,omitempty" parquet:"price"`
	Currency    *string  `json:"currency,omitempty" parquet:"currency"`
	Exchange    *string  `json:"exchange,omitempty" parquet:"exchange"`
	QuoteType   *string  `json:"quote_type,omitempty" parquet:"quote_type"`
	MarketState *string  `json:"market_state,omitempty" parquet:"market_state"`

	ChangePercent *float64 `json:"change_percent,omitempty" parquet:"change_percent"`
	DayVolume     *int64   `json:"day_volume,omitempty" parquet:"day_volume"`
	DayHigh       *float64 `json:"day_high,omitempty" parquet:"day_high"`
	DayLow        *float64 `json:"day_low,omitempty" parquet:"day_low"`
	Change        *float64 `json:"change,omitempty" parquet:"change"`
	ShortName     *string  `json:"short_name,omitempty" parquet:"short_name"`

	// Options
	ExpireDate       *int64   `json:"expire_date,omitempty" parquet:"expire_date"` // µs since epoch
	OpenPrice        *float64 `json:"open_price,omitempty" parquet:"open_price"`
	PreviousClose    *float64 `json:"previous_close,omitempty" parquet:"previous_close"`
	StrikePrice      *float64 `json:"strike_price,omitempty" parquet:"strike_price"`
	UnderlyingSymbol *string  `json:"underlying_symbol,omitempty" parquet:"underlying_symbol"`
	OpenInterest     *int64   `json:"open_interest,omitempty" parquet:"open_interest"`
	OptionType       *string  `json:"option_type,omitempty" parquet:"option_type"`
	MiniOption       *int64   `json:"mini_option,omitempty" parquet:"mini_option"`

	// Book
	LastSize  *int64   `json:"last_size,omitempty" parquet:"last_size"`
	Bid       *float64 `json:"bid,omitempty" parquet:"bid"`
	BidSize   *int64   `json:"bid_size,omitempty" parquet:"bid_size"`
	Ask       *float64 `json:"ask,omitempty" parquet:"ask"`
	AskSize   *int64   `json:"ask_size,omitempty" parquet:"ask_size"`
	PriceHint *string  `json:"price_hint,omitempty" parquet:"price_hint"`

	// Crypto
	Vol24h            *int64   `json:"vol_24h,omitempty" parquet:"vol_24h"`
	VolAllCurrencies  *int64   `json:"vol_all_currencies,omitempty" parquet:"vol_all_currencies"`
	FromCurrency      *string  `json:"from_currency,omitempty" parquet:"from_currency"`
	LastMarket        *string  `json:"last_market,omitempty" parquet:"last_market"`
	CirculatingSupply *float64 `json:"circulating_supply,omitempty" parquet:"circulating_supply"`
	MarketCap         *float64 `json:"market_cap,omitempty" parquet:"market_cap"`
}

// FromQuote flattens q into a row stamped with receivedAt.
func FromQuote(q quote.Quote, receivedAt time.Time) QuoteTick {
	symbol, _ := q.Identifier()

	return QuoteTick{
		QuoteID:    q.ID(),
		Symbol:     symbol,
		ReceivedAt: receivedAt.UnixMicro(),

		ExchangeTS:  micros(q.Time()),
		Price:       single(q.Price()),
		Currency:    text(q.Currency()),
		Exchange:    text(q.Exchange()),
		QuoteType:   enum(q.QuoteType()),
		MarketState: enum(q.MarketState()),

		ChangePercent: single(q.ChangePercent()),
		DayVolume:     integer(q.DayVolume()),
		DayHigh:       single(q.DayHigh()),
		DayLow:        single(q.DayLow()),
		Change:        single(q.Change()),
		ShortName:     text(q.ShortName()),

		ExpireDate:       micros(q.ExpireDate()),
		OpenPrice:        single(q.OpenPrice()),
		PreviousClose:    single(q.PreviousClose()),
		StrikePrice:      single(q.StrikePrice()),
		UnderlyingSymbol: text(q.UnderlyingSymbol()),
		OpenInterest:     integer(q.OpenInterest()),
		OptionType:       enum(q.OptionType()),
		MiniOption:       integer(q.MiniOption()),

		LastSize:  integer(q.LastSize()),
		Bid:       single(q.Bid()),
		BidSize:   integer(q.BidSize()),
		Ask:       single(q.Ask()),
		AskSize:   integer(q.AskSize()),
		PriceHint: enum(q.PriceHint()),

		Vol24h:            integer(q.Vol24h()),
		VolAllCurrencies:  integer(q.VolAllCurrencies()),
		FromCurrency:      text(q.FromCurrency()),
		LastMarket:        text(q.LastMarket()),
		CirculatingSupply: double(q.CirculatingSupply()),
		MarketCap:         double(q.MarketCap()),
	}
}

func text(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return &v
}

func single(v float32, ok bool) *float64 {
	if !ok {
		return nil
	}
	f := float64(v)
	return &f
}

func double(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func integer(v int64, ok bool) *int64 {
	if !ok {
		return nil
	}
	return &v
}

func micros(t time.Time, ok bool) *int64 {
	if !ok {
		return nil
	}
	us := t.UnixMicro()
	return &us
}

func enum(v fmt.Stringer, ok bool) *string {
	if !ok {
		return nil
	}
	s := v.String()
	return &s
}
