package cache

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
)

const createEntriesTable = `CREATE TABLE IF NOT EXISTS kv_entries (
	k VARCHAR(191) NOT NULL PRIMARY KEY,
	v MEDIUMTEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

// mysqlNoSuchTable is ER_NO_SUCH_TABLE.
const mysqlNoSuchTable = 1146

// SQLStore keeps entries in a MySQL table.
type SQLStore struct {
	db *sql.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps an open MySQL handle. The table is created on first use.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// EnsureSchema creates the backing table if needed.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createEntriesTable)
	return err
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT v FROM kv_entries WHERE k = ?`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) || isMissingTable(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	const upsert = `INSERT INTO kv_entries (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)`
	_, err := s.db.ExecContext(ctx, upsert, key, value)
	if isMissingTable(err) {
		if schemaErr := s.EnsureSchema(ctx); schemaErr != nil {
			return schemaErr
		}
		_, err = s.db.ExecContext(ctx, upsert, key, value)
	}
	return err
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	const del = `DELETE FROM kv_entries WHERE k = ?`
	_, err := s.db.ExecContext(ctx, del, key)
	if isMissingTable(err) {
		return nil
	}
	return err
}

func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	const query = `SELECT k FROM kv_entries WHERE k LIKE ? ORDER BY k`
	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if isMissingTable(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

func isMissingTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlNoSuchTable
}

// escapeLike escapes LIKE wildcards; the default prefix itself contains "_".
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
