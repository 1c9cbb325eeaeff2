package library

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Catalog is the library: books, members and the issue/return log, kept in a
// Store. It keeps CLI code simple and holds all lending rules.
type Catalog struct {
	store         Store
	now           func() time.Time
	logger        *slog.Logger
	strictReturns bool
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock overrides the wall clock used to timestamp transactions.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// WithStrictReturns rejects returns for which the member holds no
// outstanding issue of the book. Without it any return of a known book by a
// known member is accepted and the quantity grows without bound.
func WithStrictReturns() Option {
	return func(c *Catalog) { c.strictReturns = true }
}

func NewCatalog(store Store, opts ...Option) *Catalog {
	c := &Catalog{
		store:  store,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the underlying store.
func (c *Catalog) Close() error { return c.store.Close() }

// ------------------ Books and members ------------------

// AddBook appends the book. Duplicate ISBNs are accepted.
func (c *Catalog) AddBook(b *Book) error {
	if err := c.store.AddBook(b); err != nil {
		return err
	}
	c.logger.Debug("book added", "isbn", b.ISBN, "quantity", b.Quantity())
	return nil
}

// AddMember appends the member. Duplicate IDs are accepted.
func (c *Catalog) AddMember(m *Member) error {
	if err := c.store.AddMember(m); err != nil {
		return err
	}
	c.logger.Debug("member added", "member_id", m.ID)
	return nil
}

func (c *Catalog) FindBookByISBN(isbn string) (*Book, error) { return c.store.BookByISBN(isbn) }
func (c *Catalog) FindMemberByID(id int64) (*Member, error)  { return c.store.MemberByID(id) }

// ------------------ Circulation ------------------

// IssueBook lends one copy of the book to the member. It fails without
// changing anything unless both exist and the book is available.
func (c *Catalog) IssueBook(isbn string, memberID int64) (Transaction, error) {
	book, err := c.lookup(isbn, memberID)
	if err != nil {
		c.logger.Debug("issue rejected", "isbn", isbn, "member_id", memberID, "error", err)
		return Transaction{}, fmt.Errorf("issue book: %w", err)
	}
	if !book.IsAvailable() {
		c.logger.Debug("issue rejected", "isbn", isbn, "member_id", memberID, "quantity", book.Quantity())
		return Transaction{}, fmt.Errorf("issue book: isbn %s: %w", isbn, ErrBookUnavailable)
	}
	return c.record(book, memberID, true)
}

// ReturnBook takes back one copy of the book from the member. Availability
// is not checked.
func (c *Catalog) ReturnBook(isbn string, memberID int64) (Transaction, error) {
	book, err := c.lookup(isbn, memberID)
	if err != nil {
		c.logger.Debug("return rejected", "isbn", isbn, "member_id", memberID, "error", err)
		return Transaction{}, fmt.Errorf("return book: %w", err)
	}
	if c.strictReturns {
		outstanding, err := c.Outstanding(isbn, memberID)
		if err != nil {
			return Transaction{}, fmt.Errorf("return book: %w", err)
		}
		if outstanding <= 0 {
			c.logger.Debug("return rejected", "isbn", isbn, "member_id", memberID, "outstanding", outstanding)
			return Transaction{}, fmt.Errorf("return book: isbn %s member %d: %w", isbn, memberID, ErrNotBorrowed)
		}
	}
	return c.record(book, memberID, false)
}

// Outstanding counts issues minus returns of isbn for the member.
func (c *Catalog) Outstanding(isbn string, memberID int64) (int, error) {
	log, err := c.store.Transactions()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, t := range log {
		if t.ISBN != isbn || t.MemberID != memberID {
			continue
		}
		if t.IsIssue {
			n++
		} else {
			n--
		}
	}
	return n, nil
}

// Transactions returns the log in the order the transactions were made.
// Each call returns a fresh slice.
func (c *Catalog) Transactions() ([]Transaction, error) {
	return c.store.Transactions()
}

// lookup resolves both sides of a transaction; the book is returned only if
// the member exists too.
func (c *Catalog) lookup(isbn string, memberID int64) (*Book, error) {
	book, bookErr := c.store.BookByISBN(isbn)
	_, memberErr := c.store.MemberByID(memberID)
	if err := errors.Join(bookErr, memberErr); err != nil {
		return nil, err
	}
	return book, nil
}

func (c *Catalog) record(book *Book, memberID int64, issue bool) (Transaction, error) {
	delta := 1
	if issue {
		delta = -1
	}
	book.UpdateQuantity(delta)

	t := Transaction{
		ID:        uuid.New(),
		ISBN:      book.ISBN,
		MemberID:  memberID,
		Timestamp: c.now(),
		IsIssue:   issue,
	}
	if err := c.store.Record(book, t); err != nil {
		c.logger.Error("recording transaction failed", "isbn", book.ISBN, "member_id", memberID, "error", err)
		return Transaction{}, err
	}
	c.logger.Debug("transaction recorded", "id", t.ID, "kind", t.Kind(), "isbn", t.ISBN,
		"member_id", memberID, "quantity", book.Quantity())
	return t, nil
}
