package infra

import (
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Ensure sqlcipher driver is registered.
	_ "github.com/mutecomm/go-sqlcipher/v4"

	"github.com/opspulse/workmon/internal/domain"
)

const spoolDBName = "spool.db"

// EncryptedSpool implements domain.SpoolStore on a SQLCipher encrypted
// SQLite database. Batches that could not reach the ingestion API are
// parked here and survive agent restarts.
type EncryptedSpool struct {
	db     *sql.DB
	dbPath string
}

// NewEncryptedSpool opens (or creates) the encrypted spool database. The
// key is applied as the SQLCipher passphrase via PRAGMA key.
func NewEncryptedSpool(dataDir string, key []byte) (*EncryptedSpool, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, spoolDBName)
	keyHex := hex.EncodeToString(key)

	dsn := fmt.Sprintf("%s?_pragma_key=x'%s'&_pragma_cipher_page_size=4096", dbPath, keyHex)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open encrypted spool: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to encrypted spool: %w", err)
	}

	spool := &EncryptedSpool{db: db, dbPath: dbPath}
	if err := spool.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create spool tables: %w", err)
	}
	return spool, nil
}

func (s *EncryptedSpool) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS spool (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Enqueue parks a batch for a later retry.
func (s *EncryptedSpool) Enqueue(batch domain.EventBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO spool (id, created_at, payload) VALUES (?, ?, ?)`,
		batch.ID, time.Now().Unix(), string(payload),
	)
	return err
}

// DequeueAll returns every spooled batch in arrival order and removes the
// returned rows in the same transaction.
func (s *EncryptedSpool) DequeueAll() ([]domain.EventBatch, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.Query(`SELECT payload FROM spool ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}

	var batches []domain.EventBatch
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			rows.Close()
			return nil, err
		}
		var batch domain.EventBatch
		if err := json.Unmarshal([]byte(payload), &batch); err != nil {
			rows.Close()
			return nil, fmt.Errorf("unmarshal spooled batch: %w", err)
		}
		batches = append(batches, batch)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(batches) > 0 {
		if _, err := tx.Exec(`DELETE FROM spool`); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return batches, nil
}

// Len returns the number of spooled batches.
func (s *EncryptedSpool) Len() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM spool`).Scan(&n)
	return n, err
}

// Close releases the database connection.
func (s *EncryptedSpool) Close() error {
	return s.db.Close()
}

// Ensure EncryptedSpool implements domain.SpoolStore.
var _ domain.SpoolStore = (*EncryptedSpool)(nil)
