package demo

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/vango-dev/swapgrid/pkg/toggle"
)

// ErrListFull is returned when an include would exceed the list's capacity.
var ErrListFull = errors.New("include list is full")

// Mark is an item's list membership.
type Mark struct {
	Included bool
	Excluded bool
}

// Lists stores include/exclude membership. An item is on at most one list.
type Lists interface {
	// Apply turns item id's membership of list on or off. Turning one list
	// on removes the item from the other. capacity bounds the include list;
	// 0 means unbounded.
	Apply(ctx context.Context, id int, list string, on bool, capacity int) error

	// Marks returns the membership of every marked item in [from, to].
	Marks(ctx context.Context, from, to int) (map[int]Mark, error)

	// Counts returns the size of each list.
	Counts(ctx context.Context) (included, excluded int, err error)

	Close() error
}

// MemoryLists keeps membership in memory.
type MemoryLists struct {
	mu    sync.Mutex
	marks map[int]string
}

// NewMemoryLists creates an empty MemoryLists.
func NewMemoryLists() *MemoryLists {
	return &MemoryLists{marks: make(map[int]string)}
}

// Apply implements Lists.
func (m *MemoryLists) Apply(_ context.Context, id int, list string, on bool, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !on {
		if m.marks[id] == list {
			delete(m.marks, id)
		}
		return nil
	}
	if list == toggle.ListInclude && capacity > 0 && m.marks[id] != list {
		n := 0
		for _, l := range m.marks {
			if l == toggle.ListInclude {
				n++
			}
		}
		if n >= capacity {
			return ErrListFull
		}
	}
	m.marks[id] = list
	return nil
}

// Marks implements Lists.
func (m *MemoryLists) Marks(_ context.Context, from, to int) (map[int]Mark, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int]Mark)
	for id, l := range m.marks {
		if id >= from && id <= to {
			out[id] = markOf(l)
		}
	}
	return out, nil
}

// Counts implements Lists.
func (m *MemoryLists) Counts(context.Context) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var inc, exc int
	for _, l := range m.marks {
		if l == toggle.ListInclude {
			inc++
		} else {
			exc++
		}
	}
	return inc, exc, nil
}

// Close implements Lists.
func (m *MemoryLists) Close() error { return nil }

// SQLiteLists keeps membership in a SQLite database.
type SQLiteLists struct {
	db *sql.DB
}

// OpenSQLiteLists opens (creating if needed) the database at path.
func OpenSQLiteLists(ctx context.Context, path string) (*SQLiteLists, error) {
	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS marks (
			item_id INTEGER PRIMARY KEY,
			list    TEXT NOT NULL CHECK (list IN ('include', 'exclude'))
		);`,
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &SQLiteLists{db: db}, nil
}

// Apply implements Lists.
func (s *SQLiteLists) Apply(ctx context.Context, id int, list string, on bool, capacity int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if !on {
		if _, err := tx.ExecContext(ctx, `DELETE FROM marks WHERE item_id = ? AND list = ?`, id, list); err != nil {
			return err
		}
		return tx.Commit()
	}

	if list == toggle.ListInclude && capacity > 0 {
		var current string
		err := tx.QueryRowContext(ctx, `SELECT list FROM marks WHERE item_id = ?`, id).Scan(&current)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if current != list {
			var n int
			if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM marks WHERE list = ?`, list).Scan(&n); err != nil {
				return err
			}
			if n >= capacity {
				return ErrListFull
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO marks (item_id, list) VALUES (?, ?)
		 ON CONFLICT(item_id) DO UPDATE SET list = excluded.list`, id, list)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Marks implements Lists.
func (s *SQLiteLists) Marks(ctx context.Context, from, to int) (map[int]Mark, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, list FROM marks WHERE item_id BETWEEN ? AND ?`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]Mark)
	for rows.Next() {
		var id int
		var l string
		if err := rows.Scan(&id, &l); err != nil {
			return nil, err
		}
		out[id] = markOf(l)
	}
	return out, rows.Err()
}

// Counts implements Lists.
func (s *SQLiteLists) Counts(ctx context.Context) (included, excluded int, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT list, COUNT(*) FROM marks GROUP BY list`)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()
	for rows.Next() {
		var l string
		var n int
		if err := rows.Scan(&l, &n); err != nil {
			return 0, 0, err
		}
		if l == toggle.ListInclude {
			included = n
		} else {
			excluded = n
		}
	}
	return included, excluded, rows.Err()
}

// Close implements Lists.
func (s *SQLiteLists) Close() error { return s.db.Close() }

func markOf(list string) Mark {
	return Mark{Included: list == toggle.ListInclude, Excluded: list == toggle.ListExclude}
}
