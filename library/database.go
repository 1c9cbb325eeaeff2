package library

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Database is a Store backed by a private in-memory SQLite database.
// Nothing is written to disk; the data is gone once the Database is closed.
type Database struct {
	db *sql.DB

	addBookStmt   *sql.Stmt
	addMemberStmt *sql.Stmt
}

// NewDatabase opens an empty in-memory SQLite database, applies the schema,
// and prepares common statements.
func NewDatabase() (*Database, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Each connection to :memory: is its own database; pin to one.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db}
	if err := database.prepareStatements(); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addBookStmt != nil {
		d.addBookStmt.Close()
	}
	if d.addMemberStmt != nil {
		d.addMemberStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func applySchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// seq columns carry insertion order; isbn and member id are deliberately
	// not unique.
	stmts := []string{
		`CREATE TABLE books (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            isbn TEXT NOT NULL,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            quantity INTEGER NOT NULL,
            available BOOLEAN NOT NULL
        );`,
		`CREATE INDEX idx_books_isbn ON books(isbn, seq);`,
		`CREATE TABLE members (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id INTEGER NOT NULL,
            name TEXT NOT NULL,
            contact TEXT NOT NULL
        );`,
		`CREATE INDEX idx_members_id ON members(id, seq);`,
		`CREATE TABLE transactions (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            isbn TEXT NOT NULL,
            member_id INTEGER NOT NULL,
            occurred_at DATETIME NOT NULL,
            is_issue BOOLEAN NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addBookStmt, err = d.db.Prepare(`INSERT INTO books(isbn,title,author,genre,quantity,available) VALUES(?,?,?,?,?,?)`); err != nil {
		return err
	}
	if d.addMemberStmt, err = d.db.Prepare(`INSERT INTO members(id,name,contact) VALUES(?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// CRUD helpers
// ---------------------------------------------------------------------------

func (d *Database) AddBook(b *Book) error {
	res, err := d.addBookStmt.Exec(b.ISBN, b.Title, b.Author, b.Genre, b.quantity, b.available)
	if err != nil {
		return fmt.Errorf("storing book: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.seq = uint64(seq)
	return nil
}

func (d *Database) AddMember(m *Member) error {
	if _, err := d.addMemberStmt.Exec(m.ID, m.Name, m.Contact); err != nil {
		return fmt.Errorf("storing member: %w", err)
	}
	return nil
}

func (d *Database) BookByISBN(isbn string) (*Book, error) {
	var (
		b   Book
		seq int64
	)
	err := d.db.QueryRow(`SELECT seq,isbn,title,author,genre,quantity,available FROM books WHERE isbn=? ORDER BY seq LIMIT 1`, isbn).
		Scan(&seq, &b.ISBN, &b.Title, &b.Author, &b.Genre, &b.quantity, &b.available)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("isbn %s: %w", isbn, ErrBookNotFound)
	}
	if err != nil {
		return nil, err
	}
	b.seq = uint64(seq)
	return &b, nil
}

func (d *Database) MemberByID(id int64) (*Member, error) {
	var m Member
	err := d.db.QueryRow(`SELECT id,name,contact FROM members WHERE id=? ORDER BY seq LIMIT 1`, id).
		Scan(&m.ID, &m.Name, &m.Contact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %d: %w", id, ErrMemberNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Record updates the book's quantity and appends the transaction in one
// SQL transaction.
func (d *Database) Record(b *Book, t Transaction) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`UPDATE books SET quantity=?, available=? WHERE seq=?`, b.quantity, b.available, int64(b.seq))
	if err != nil {
		return fmt.Errorf("updating book: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("recording transaction: isbn %s: %w", b.ISBN, ErrBookNotFound)
	}

	if _, err := tx.Exec(`INSERT INTO transactions(id,isbn,member_id,occurred_at,is_issue) VALUES(?,?,?,?,?)`,
		t.ID.String(), t.ISBN, t.MemberID, t.Timestamp, t.IsIssue); err != nil {
		return fmt.Errorf("appending transaction: %w", err)
	}
	return tx.Commit()
}

// Transactions returns the log ordered by insertion.
func (d *Database) Transactions() ([]Transaction, error) {
	rows, err := d.db.Query(`SELECT id,isbn,member_id,occurred_at,is_issue FROM transactions ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var log []Transaction
	for rows.Next() {
		var (
			t  Transaction
			id string
			at time.Time
		)
		if err := rows.Scan(&id, &t.ISBN, &t.MemberID, &at, &t.IsIssue); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("transaction %s: %w", id, err)
		}
		t.Timestamp = at
		log = append(log, t)
	}
	return log, rows.Err()
}
