package database

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// pragmas lists the per-connection pragmas. The driver runs busy_timeout
// first and the rest in name order.
func (opts *SQLiteOptions) pragmas() []string {
	var out []string
	add := func(name, value string) {
		out = append(out, fmt.Sprintf("%s(%s)", name, value))
	}

	if opts.BusyTimeout > 0 {
		add("busy_timeout", strconv.Itoa(opts.BusyTimeout))
	}
	if opts.Journal != "" {
		add("journal_mode", string(opts.Journal))
	}
	add("foreign_keys", boolPragma(opts.ForeignKeys))
	if opts.Synchronous != "" {
		add("synchronous", string(opts.Synchronous))
	}
	if opts.CacheSize != 0 {
		add("cache_size", strconv.Itoa(opts.CacheSize))
	}
	if opts.LockingMode != "" {
		add("locking_mode", string(opts.LockingMode))
	}
	if opts.AutoVacuum != "" {
		add("auto_vacuum", opts.AutoVacuum)
	}
	if opts.CaseSensitiveLike {
		add("case_sensitive_like", "1")
	}
	if opts.RecursiveTriggers {
		add("recursive_triggers", "1")
	}
	if opts.SecureDelete != "" {
		add("secure_delete", opts.SecureDelete)
	}
	return out
}

func boolPragma(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// buildConnectionString generates a modernc.org/sqlite DSN from options
func (opts *SQLiteOptions) buildConnectionString() string {
	params := url.Values{}

	for _, p := range opts.pragmas() {
		params.Add("_pragma", p)
	}
	if opts.TxLock != "" {
		params.Set("_txlock", string(opts.TxLock))
	}
	if opts.Cache != "" {
		params.Set("cache", string(opts.Cache))
	}
	if opts.Immutable {
		params.Set("immutable", "1")
	}
	if opts.Mode != "" {
		params.Set("mode", opts.Mode)
	}

	connStr := opts.Path
	if !strings.HasPrefix(connStr, "file:") {
		connStr = "file:" + connStr
	}
	if encoded := params.Encode(); encoded != "" {
		connStr += "?" + encoded
	}

	return connStr
}
