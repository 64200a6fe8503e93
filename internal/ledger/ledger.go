package ledger

// Store defines the ledger operations used by the uploader and the status API.
// Consumers should depend on this interface rather than the concrete *DB type.
type Store interface {
	Record(e Entry) error
	Lookup(checksum string) (*Entry, error)
	Recent(limit int) ([]Entry, error)
	Count() (int, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
