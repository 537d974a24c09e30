package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/doeshing/cmdwise/internal/domain"
	"github.com/doeshing/cmdwise/internal/pkg/filesystem"
	"github.com/doeshing/cmdwise/internal/ports"
)

// SQLiteStore persists query records, including the serialized safety
// verdict, in a SQLite database under ~/.cmdwise/history/.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the history database. If SQLite is
// unavailable the store degrades to the JSONL file fallback.
func NewSQLiteStore() *SQLiteStore {
	path := filepath.Join(filesystem.UserHomeDir(), ".cmdwise", "history", "history.db")
	return NewSQLiteStoreAt(path)
}

// NewSQLiteStoreAt opens a store at an explicit path, used by tests.
func NewSQLiteStoreAt(path string) *SQLiteStore {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &SQLiteStore{path: path}
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return &SQLiteStore{path: path}
	}
	return store
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		id TEXT PRIMARY KEY,
		timestamp TEXT,
		prompt TEXT,
		command TEXT,
		model TEXT,
		executed INTEGER,
		success INTEGER,
		exit_code INTEGER,
		validation TEXT,
		execution_time_ms INTEGER
	);`)
	return err
}

// Save inserts a new record, assigning an ID if the caller left it empty.
func (s *SQLiteStore) Save(ctx context.Context, record domain.HistoryRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	if s.db == nil {
		return (&FileStore{path: s.fallbackPath()}).Save(ctx, record)
	}
	verdict, err := json.Marshal(record.Validation)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx, `INSERT INTO commands
		(id, timestamp, prompt, command, model, executed, success, exit_code, validation, execution_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Timestamp.Format(time.RFC3339),
		record.Prompt,
		record.Command,
		record.Model,
		boolToInt(record.Executed),
		boolToInt(record.Success),
		record.ExitCode,
		string(verdict),
		record.ExecutionTimeMS,
	)
	return err
}

// Recent returns the newest records first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]domain.HistoryRecord, error) {
	return s.query(ctx, "", limit)
}

// Search returns records whose prompt or command contains the term.
func (s *SQLiteStore) Search(ctx context.Context, term string, limit int) ([]domain.HistoryRecord, error) {
	return s.query(ctx, term, limit)
}

func (s *SQLiteStore) query(ctx context.Context, search string, limit int) ([]domain.HistoryRecord, error) {
	if s.db == nil {
		return (&FileStore{path: s.fallbackPath()}).query(search, limit)
	}
	builder := strings.Builder{}
	builder.WriteString("SELECT id, timestamp, prompt, command, model, executed, success, exit_code, validation, execution_time_ms FROM commands")
	var args []interface{}
	if search != "" {
		builder.WriteString(" WHERE prompt LIKE ? OR command LIKE ?")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		var ts, verdict string
		var executed, success int
		if err := rows.Scan(&rec.ID, &ts, &rec.Prompt, &rec.Command, &rec.Model, &executed, &success, &rec.ExitCode, &verdict, &rec.ExecutionTimeMS); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Executed = executed == 1
		rec.Success = success == 1
		if verdict != "" {
			_ = json.Unmarshal([]byte(verdict), &rec.Validation)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentCommands returns just the command strings of the newest records,
// oldest first, sized for the behavioral analyzer window.
func (s *SQLiteStore) RecentCommands(ctx context.Context, limit int) ([]string, error) {
	records, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	commands := make([]string, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		commands = append(commands, records[i].Command)
	}
	return commands, nil
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	if s.db == nil {
		return (&FileStore{path: s.fallbackPath()}).Clear(ctx)
	}
	_, err := s.db.ExecContext(ctx, "DELETE FROM commands")
	return err
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) fallbackPath() string {
	return strings.TrimSuffix(s.path, ".db") + ".jsonl"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
