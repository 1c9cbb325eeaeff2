package library

import "fmt"

// Store keeps the three catalog collections in insertion order.
//
// Lookups return copies; callers change a book by passing the modified copy
// back through Record, which also appends the transaction in the same commit.
type Store interface {
	AddBook(b *Book) error
	AddMember(m *Member) error

	// BookByISBN and MemberByID return the earliest inserted match, or
	// ErrBookNotFound / ErrMemberNotFound.
	BookByISBN(isbn string) (*Book, error)
	MemberByID(id int64) (*Member, error)

	// Record writes b's quantity and appends t atomically.
	Record(b *Book, t Transaction) error
	Transactions() ([]Transaction, error)

	Close() error
}

// Backend names accepted by OpenStore.
const (
	BackendMemDB  = "memdb"
	BackendSQLite = "sqlite"
)

// OpenStore creates an empty in-memory store of the named backend.
func OpenStore(backend string) (Store, error) {
	switch backend {
	case "", BackendMemDB:
		return NewMemStore()
	case BackendSQLite:
		return NewDatabase()
	default:
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", backend, BackendMemDB, BackendSQLite)
	}
}
