package database

// SynchronousMode represents the available synchronous settings for SQLite
type SynchronousMode string

const (
	SynchronousOff    SynchronousMode = "OFF"
	SynchronousNormal SynchronousMode = "NORMAL"
	SynchronousFull   SynchronousMode = "FULL"
	SynchronousExtra  SynchronousMode = "EXTRA"
)

// JournalMode represents the available journal modes for SQLite
type JournalMode string

const (
	JournalDelete   JournalMode = "DELETE"
	JournalTruncate JournalMode = "TRUNCATE"
	JournalPersist  JournalMode = "PERSIST"
	JournalMemory   JournalMode = "MEMORY"
	JournalWAL      JournalMode = "WAL"
	JournalOff      JournalMode = "OFF"
)

// LockingMode represents the available locking modes for SQLite
type LockingMode string

const (
	LockingNormal    LockingMode = "NORMAL"
	LockingExclusive LockingMode = "EXCLUSIVE"
)

// CacheMode represents the available cache modes for SQLite
type CacheMode string

const (
	CacheShared  CacheMode = "shared"
	CachePrivate CacheMode = "private"
)

// TxLock is the BEGIN flavour used for transactions
type TxLock string

const (
	TxLockDeferred  TxLock = "deferred"
	TxLockImmediate TxLock = "immediate"
	TxLockExclusive TxLock = "exclusive"
)

// SQLiteOptions contains configuration options for SQLite connection.
// Pragmas are applied to every pooled connection through the DSN.
type SQLiteOptions struct {
	// Path to the SQLite database file
	Path string

	// URI parameters
	Mode      string    // ro, rw, rwc, memory
	Cache     CacheMode // shared, private
	Immutable bool

	// Per-connection pragmas
	Journal     JournalMode     // journal_mode: DELETE, TRUNCATE, PERSIST, MEMORY, WAL, OFF
	ForeignKeys bool            // foreign_keys
	BusyTimeout int             // busy_timeout (milliseconds)
	CacheSize   int             // cache_size (pages, negative for KiB)
	Synchronous SynchronousMode // synchronous: OFF, NORMAL, FULL, EXTRA
	LockingMode LockingMode     // locking_mode: NORMAL, EXCLUSIVE

	// Transaction
	TxLock TxLock // _txlock: deferred, immediate, exclusive

	// Advanced pragmas
	AutoVacuum        string // none, full, incremental
	CaseSensitiveLike bool
	RecursiveTriggers bool
	SecureDelete      string // boolean or "FAST"
}

// NewDefaultOptions creates SQLiteOptions with recommended defaults
func NewDefaultOptions(path string) SQLiteOptions {
	return SQLiteOptions{
		Path:        path,
		Mode:        "rwc",
		Journal:     JournalWAL,
		ForeignKeys: true,
		BusyTimeout: 5000,
		CacheSize:   2000,
		Synchronous: SynchronousNormal,
		Cache:       CachePrivate,
		TxLock:      TxLockImmediate,
	}
}
