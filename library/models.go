package library

import (
	"time"

	"github.com/google/uuid"
)

// Book represents a catalog entry and its current inventory.
// Quantity and availability are only changed through UpdateQuantity so that
// available always equals quantity > 0.
type Book struct {
	ISBN   string `json:"isbn"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre"`

	quantity  int
	available bool

	// seq is the store's insertion sequence; zero until the book is stored.
	seq uint64
}

// NewBook builds a book with availability derived from the initial quantity.
func NewBook(isbn, title, author, genre string, quantity int) *Book {
	b := &Book{ISBN: isbn, Title: title, Author: author, Genre: genre}
	b.setQuantity(quantity)
	return b
}

// UpdateQuantity adds delta to the quantity and recomputes availability.
// There is no lower bound.
func (b *Book) UpdateQuantity(delta int) {
	b.setQuantity(b.quantity + delta)
}

func (b *Book) setQuantity(q int) {
	b.quantity = q
	b.available = q > 0
}

func (b *Book) Quantity() int     { return b.quantity }
func (b *Book) IsAvailable() bool { return b.available }

// Member represents a registered library member.
type Member struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// Transaction is an immutable entry in the issue/return log.
type Transaction struct {
	ID        uuid.UUID `json:"id"`
	ISBN      string    `json:"isbn"`
	MemberID  int64     `json:"member_id"`
	Timestamp time.Time `json:"timestamp"`
	IsIssue   bool      `json:"is_issue"`
}

// Kind renders the transaction tag as shown in the history.
func (t Transaction) Kind() string {
	if t.IsIssue {
		return "Issue"
	}
	return "Return"
}
