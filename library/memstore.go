package library

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-memdb"
)

const (
	tableBooks        = "book"
	tableMembers      = "member"
	tableTransactions = "transaction"
)

// MemStore is the default Store, backed by go-memdb.
//
// Every record carries a zero-padded sequence key as its primary index, so
// iterating the primary index yields insertion order and the first hit on a
// non-unique secondary index is the earliest inserted record.
type MemStore struct {
	db  *memdb.MemDB
	seq uint64
}

func NewMemStore() (*MemStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableBooks: {
				Name: tableBooks,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
					"isbn": {
						Name:    "isbn",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "ISBNKey"},
					},
				},
			},
			tableMembers: {
				Name: tableMembers,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
					"member_id": {
						Name:    "member_id",
						Unique:  false,
						Indexer: &memdb.StringFieldIndex{Field: "MemberID"},
					},
				},
			},
			tableTransactions: {
				Name: tableTransactions,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
				},
			},
		},
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("validate memdb schema: %w", err)
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &MemStore{db: db}, nil
}

type bookRecord struct {
	Key       string
	ISBNKey   string
	ISBN      string
	Title     string
	Author    string
	Genre     string
	Quantity  int
	Available bool
	Seq       uint64
}

type memberRecord struct {
	Key      string
	MemberID string
	ID       int64
	Name     string
	Contact  string
}

type transactionRecord struct {
	Key       string
	ID        string
	ISBN      string
	MemberID  int64
	Timestamp time.Time
	IsIssue   bool
}

func seqKey(seq uint64) string { return fmt.Sprintf("%020d", seq) }

func memberKey(id int64) string { return strconv.FormatInt(id, 10) }

// isbnKey is never empty; memdb refuses to index empty strings.
func isbnKey(isbn string) string { return "isbn:" + isbn }

func toBookRecord(b *Book) bookRecord {
	return bookRecord{
		Key:       seqKey(b.seq),
		ISBNKey:   isbnKey(b.ISBN),
		ISBN:      b.ISBN,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		Quantity:  b.quantity,
		Available: b.available,
		Seq:       b.seq,
	}
}

func fromBookRecord(r bookRecord) *Book {
	return &Book{
		ISBN:      r.ISBN,
		Title:     r.Title,
		Author:    r.Author,
		Genre:     r.Genre,
		quantity:  r.Quantity,
		available: r.Available,
		seq:       r.Seq,
	}
}

// nextSeq must be called while holding a write transaction.
func (s *MemStore) nextSeq() uint64 {
	s.seq++
	return s.seq
}

func (s *MemStore) AddBook(b *Book) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	stored := *b
	stored.seq = s.nextSeq()
	if err := txn.Insert(tableBooks, toBookRecord(&stored)); err != nil {
		return fmt.Errorf("storing book: %w", err)
	}
	txn.Commit()
	b.seq = stored.seq
	return nil
}

func (s *MemStore) AddMember(m *Member) error {
	txn := s.db.Txn(true)
	defer txn.Abort()

	rec := memberRecord{
		Key:      seqKey(s.nextSeq()),
		MemberID: memberKey(m.ID),
		ID:       m.ID,
		Name:     m.Name,
		Contact:  m.Contact,
	}
	if err := txn.Insert(tableMembers, rec); err != nil {
		return fmt.Errorf("storing member: %w", err)
	}
	txn.Commit()
	return nil
}

func (s *MemStore) BookByISBN(isbn string) (*Book, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableBooks, "isbn", isbnKey(isbn))
	if err != nil {
		return nil, fmt.Errorf("searching by isbn: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrBookNotFound)
	}
	return fromBookRecord(raw.(bookRecord)), nil
}

func (s *MemStore) MemberByID(id int64) (*Member, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableMembers, "member_id", memberKey(id))
	if err != nil {
		return nil, fmt.Errorf("searching by member id: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("member %d: %w", id, ErrMemberNotFound)
	}
	r := raw.(memberRecord)
	return &Member{ID: r.ID, Name: r.Name, Contact: r.Contact}, nil
}

func (s *MemStore) Record(b *Book, t Transaction) error {
	if b.seq == 0 {
		return fmt.Errorf("recording transaction: isbn %s: %w", b.ISBN, ErrBookNotFound)
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tableBooks, "id", seqKey(b.seq))
	if err != nil {
		return fmt.Errorf("recording transaction: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("recording transaction: isbn %s: %w", b.ISBN, ErrBookNotFound)
	}

	updated := raw.(bookRecord)
	updated.Quantity = b.quantity
	updated.Available = b.available
	if err := txn.Insert(tableBooks, updated); err != nil {
		return fmt.Errorf("updating book: %w", err)
	}

	rec := transactionRecord{
		Key:       seqKey(s.nextSeq()),
		ID:        t.ID.String(),
		ISBN:      t.ISBN,
		MemberID:  t.MemberID,
		Timestamp: t.Timestamp,
		IsIssue:   t.IsIssue,
	}
	if err := txn.Insert(tableTransactions, rec); err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}

	txn.Commit()
	return nil
}

func (s *MemStore) Transactions() ([]Transaction, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableTransactions, "id")
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	var log []Transaction
	for obj := it.Next(); obj != nil; obj = it.Next() {
		r := obj.(transactionRecord)
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", r.Key, err)
		}
		log = append(log, Transaction{
			ID:        id,
			ISBN:      r.ISBN,
			MemberID:  r.MemberID,
			Timestamp: r.Timestamp,
			IsIssue:   r.IsIssue,
		})
	}
	return log, nil
}

// Close is a no-op; the data lives only as long as the process.
func (s *MemStore) Close() error { return nil }
