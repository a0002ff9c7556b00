// Package cache stores loaded programs in SQLite, keyed by the digest of
// their SOL-XML source, so unchanged sources skip XML parsing.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/chazu/sol/pkg/ast"
)

// ErrNotFound indicates no image is stored for a digest.
var ErrNotFound = errors.New("program image not found")

var log = commonlog.GetLogger("sol.cache")

// Store is a program image cache backed by a SQLite database.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens or creates the cache database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS images (
		digest     TEXT PRIMARY KEY,
		image      BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Digest returns the cache key for a source document.
func Digest(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Get returns the program stored under digest.
func (s *Store) Get(digest string) (*ast.Program, error) {
	var image []byte
	err := s.db.QueryRow("SELECT image FROM images WHERE digest = ?", digest).Scan(&image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debugf("cache miss %s", short(digest))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying image: %w", err)
	}

	p, err := ast.UnmarshalProgram(image)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", short(digest), err)
	}
	log.Debugf("cache hit %s", short(digest))
	return p, nil
}

// Put stores p under digest, replacing any previous image.
func (s *Store) Put(digest string, p *ast.Program) error {
	image, err := ast.MarshalProgram(p)
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO images (digest, image, created_at) VALUES (?, ?, ?)",
		digest, image, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving image: %w", err)
	}
	return nil
}

// Prune deletes images stored more than olderThan ago and returns how
// many were removed.
func (s *Store) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM images WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning images: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning images: %w", err)
	}
	if n > 0 {
		log.Infof("pruned %d cached images", n)
	}
	return n, nil
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
