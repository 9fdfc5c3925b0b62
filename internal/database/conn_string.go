package database

import (
	"net"
	"net/url"
	"strconv"

	"github.com/rickgao/quote-stream/internal/config"
)

// ApplicationName tags collector sessions in pg_stat_activity.
const ApplicationName = "quote-stream"

// BuildConnString builds a PostgreSQL URL from cfg. Credentials are escaped
// as URL userinfo and IPv6 hosts are bracketed.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}
	port := cfg.Port
	if port == 0 {
		port = config.DefaultDBPort
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", ApplicationName)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:     "/" + cfg.Name,
		RawQuery: q.Encode(),
	}
	return u.String()
}
