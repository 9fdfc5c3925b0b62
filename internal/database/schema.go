package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// QuotesTable is the table the postgres sink inserts into.
const QuotesTable = "quotes"

// Execer is the subset of pgxpool.Pool needed to apply the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// schemaStatements create the quotes table and its lookup index. Times are
// microseconds since the epoch, matching model.QuoteTick.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS quotes (
		quote_id            UUID PRIMARY KEY,
		symbol              TEXT NOT NULL,
		received_at         BIGINT NOT NULL,
		exchange_ts         BIGINT,
		price               DOUBLE PRECISION,
		currency            TEXT,
		exchange            TEXT,
		quote_type          TEXT,
		market_state        TEXT,
		change_percent      DOUBLE PRECISION,
		day_volume          BIGINT,
		day_high            DOUBLE PRECISION,
		day_low             DOUBLE PRECISION,
		change              DOUBLE PRECISION,
		short_name          TEXT,
		expire_date         BIGINT,
		open_price          DOUBLE PRECISION,
		previous_close      DOUBLE PRECISION,
		strike_price        DOUBLE PRECISION,
		underlying_symbol   TEXT,
		open_interest       BIGINT,
		option_type         TEXT,
		mini_option         BIGINT,
		last_size           BIGINT,
		bid                 DOUBLE PRECISION,
		bid_size            BIGINT,
		ask                 DOUBLE PRECISION,
		ask_size            BIGINT,
		price_hint          TEXT,
		vol_24h             BIGINT,
		vol_all_currencies  BIGINT,
		from_currency       TEXT,
		last_market         TEXT,
		circulating_supply  DOUBLE PRECISION,
		market_cap          DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS quotes_symbol_received_at_idx ON quotes (symbol, received_at)`,
}

// EnsureSchema creates the quotes table if it does not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
