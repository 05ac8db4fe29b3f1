package db

import (
	"strconv"
	"strings"
)

// Rebind rewrites '?' placeholders into the positional form pgx expects.
// Queries are written once with '?' and run unchanged on SQLite.
func Rebind(driver string, query string) string {
	if driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
