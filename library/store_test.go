package library

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forEachStore runs fn against a fresh store of every backend.
func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	for _, backend := range []string{BackendMemDB, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			s, err := OpenStore(backend)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			fn(t, s)
		})
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	_, err := OpenStore("postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store backend")
}

func TestStoreBookLookup(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.AddBook(NewBook("123", "Dune", "Herbert", "SF", 2)))

		b, err := s.BookByISBN("123")
		require.NoError(t, err)
		assert.Equal(t, "Dune", b.Title)
		assert.Equal(t, "Herbert", b.Author)
		assert.Equal(t, "SF", b.Genre)
		assert.Equal(t, 2, b.Quantity())
		assert.True(t, b.IsAvailable())

		_, err = s.BookByISBN("12")
		assert.ErrorIs(t, err, ErrBookNotFound)
		_, err = s.BookByISBN("")
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestStoreFirstMatchWinsOnDuplicates(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		// Enough rows that a non-numeric ordering of the sequence would show.
		for i := 0; i < 300; i++ {
			require.NoError(t, s.AddBook(NewBook("filler", "F", "A", "G", 1)))
		}
		require.NoError(t, s.AddBook(NewBook("dup", "First", "A", "G", 1)))
		for i := 0; i < 300; i++ {
			require.NoError(t, s.AddBook(NewBook("filler", "F", "A", "G", 1)))
		}
		require.NoError(t, s.AddBook(NewBook("dup", "Second", "A", "G", 7)))

		b, err := s.BookByISBN("dup")
		require.NoError(t, err)
		assert.Equal(t, "First", b.Title)

		require.NoError(t, s.AddMember(&Member{ID: 7, Name: "Ann", Contact: "a@x"}))
		require.NoError(t, s.AddMember(&Member{ID: 7, Name: "Bob", Contact: "b@x"}))
		m, err := s.MemberByID(7)
		require.NoError(t, err)
		assert.Equal(t, "Ann", m.Name)
		assert.Equal(t, "a@x", m.Contact)

		_, err = s.MemberByID(8)
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestStoreRecordUpdatesBookAndAppends(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.AddBook(NewBook("1", "One", "A", "G", 1)))
		require.NoError(t, s.AddBook(NewBook("2", "Two", "A", "G", 1)))

		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		var want []Transaction
		for i, isbn := range []string{"2", "1", "2", "1", "1"} {
			b, err := s.BookByISBN(isbn)
			require.NoError(t, err)
			b.UpdateQuantity(-1)

			tr := Transaction{
				ID:        uuid.New(),
				ISBN:      isbn,
				MemberID:  int64(100 + i),
				Timestamp: at.Add(time.Duration(i) * time.Minute),
				IsIssue:   i%2 == 0,
			}
			require.NoError(t, s.Record(b, tr))
			want = append(want, tr)
		}

		one, err := s.BookByISBN("1")
		require.NoError(t, err)
		assert.Equal(t, -2, one.Quantity())
		assert.False(t, one.IsAvailable())

		two, err := s.BookByISBN("2")
		require.NoError(t, err)
		assert.Equal(t, -1, two.Quantity())

		got, err := s.Transactions()
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ID, got[i].ID)
			assert.Equal(t, want[i].ISBN, got[i].ISBN)
			assert.Equal(t, want[i].MemberID, got[i].MemberID)
			assert.Equal(t, want[i].IsIssue, got[i].IsIssue)
			assert.True(t, want[i].Timestamp.Equal(got[i].Timestamp), "timestamp %d", i)
		}
	})
}

func TestStoreRecordUnknownBook(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		err := s.Record(NewBook("ghost", "G", "A", "G", 1), Transaction{ID: uuid.New(), ISBN: "ghost"})
		assert.ErrorIs(t, err, ErrBookNotFound)

		log, err := s.Transactions()
		require.NoError(t, err)
		assert.Empty(t, log)
	})
}

func TestStoreTransactionsRestartable(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		require.NoError(t, s.AddBook(NewBook("1", "One", "A", "G", 1)))
		b, err := s.BookByISBN("1")
		require.NoError(t, err)
		require.NoError(t, s.Record(b, Transaction{ID: uuid.New(), ISBN: "1", MemberID: 1, Timestamp: time.Now(), IsIssue: true}))

		first, err := s.Transactions()
		require.NoError(t, err)
		first[0].ISBN = "changed"

		second, err := s.Transactions()
		require.NoError(t, err)
		require.Len(t, second, 1)
		assert.Equal(t, "1", second[0].ISBN)
	})
}
