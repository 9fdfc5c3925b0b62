package writer

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/quote-stream/internal/database"
	"github.com/rickgao/quote-stream/internal/model"
	"github.com/rickgao/quote-stream/internal/router"
)

// BatchSender is the subset of pgxpool.Pool the postgres sink needs.
type BatchSender interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

var quoteColumns = []string{
	"quote_id", "symbol", "received_at",
	"exchange_ts", "price", "currency", "exchange", "quote_type", "market_state",
	"change_percent", "day_volume", "day_high", "day_low", "change", "short_name",
	"expire_date", "open_price", "previous_close", "strike_price", "underlying_symbol",
	"open_interest", "option_type", "mini_option",
	"last_size", "bid", "bid_size", "ask", "ask_size", "price_hint",
	"vol_24h", "vol_all_currencies", "from_currency", "last_market",
	"circulating_supply", "market_cap",
}

var insertQuoteSQL = buildInsertSQL(database.QuotesTable, quoteColumns, "quote_id")

func buildInsertSQL(table string, columns []string, key string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "), key)
}

// quoteArgs returns r's values in quoteColumns order. Nil pointers become
// SQL NULL.
func quoteArgs(r model.QuoteTick) []any {
	return []any{
		r.QuoteID, r.Symbol, r.ReceivedAt,
		r.ExchangeTS, r.Price, r.Currency, r.Exchange, r.QuoteType, r.MarketState,
		r.ChangePercent, r.DayVolume, r.DayHigh, r.DayLow, r.Change, r.ShortName,
		r.ExpireDate, r.OpenPrice, r.PreviousClose, r.StrikePrice, r.UnderlyingSymbol,
		r.OpenInterest, r.OptionType, r.MiniOption,
		r.LastSize, r.Bid, r.BidSize, r.Ask, r.AskSize, r.PriceHint,
		r.Vol24h, r.VolAllCurrencies, r.FromCurrency, r.LastMarket,
		r.CirculatingSupply, r.MarketCap,
	}
}

// PostgresSink appends rows to the quotes table.
type PostgresSink struct {
	db BatchSender
}

// NewPostgresSink creates a sink over db. The schema must already exist
// (see database.EnsureSchema).
func NewPostgresSink(db BatchSender) *PostgresSink {
	return &PostgresSink{db: db}
}

// Name identifies the sink in routing rules and metrics.
func (s *PostgresSink) Name() string { return router.SinkPostgres }

// Write inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (s *PostgresSink) Write(ctx context.Context, rows []model.QuoteTick) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(insertQuoteSQL, quoteArgs(r)...)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}

// Close is a no-op; the pool is owned by the caller.
func (s *PostgresSink) Close() error { return nil }
