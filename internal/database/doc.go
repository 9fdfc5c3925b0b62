// Package database provides the PostgreSQL connection pool and the schema
// for the quotes table written by the postgres sink.
package database
