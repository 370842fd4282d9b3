package storage

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// --- Structures ---

// EventKind は移籍履歴に記録される出来事の種類です。
type EventKind string

const (
	EventRegistered       EventKind = "registered"
	EventUnregistered     EventKind = "unregistered"
	EventSigned           EventKind = "signed"
	EventForceSigned      EventKind = "force_signed"
	EventReleased         EventKind = "released"
	EventForceReleased    EventKind = "force_released"
	EventReleaseClause    EventKind = "release_clause"
	EventChairmanHired    EventKind = "chairman_hired"
	EventChairmanUnhired  EventKind = "chairman_unhired"
	EventManagerHired     EventKind = "manager_hired"
	EventManagerUnhired   EventKind = "manager_unhired"
	EventAssistantHired   EventKind = "assistant_hired"
	EventAssistantUnhired EventKind = "assistant_unhired"
)

// TransferEvent は履歴の 1 行です。
type TransferEvent struct {
	ID            int64
	Kind          EventKind
	PlayerID      string
	Team          string
	ActorID       string
	Seasons       string
	ReleaseClause bool
	Reason        string
	CreatedAt     time.Time
}

// HistoryFilter は Recent の絞り込み条件です。空のフィールドは無視されます。
type HistoryFilter struct {
	Team     string
	PlayerID string
}

// --- HistoryStore ---

type HistoryStore struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewHistoryStore(dataSourceName string) (*HistoryStore, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	// SQLite は単一の書き込み接続で使う。":memory:" も接続ごとに別 DB になるのを防げる
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	store := &HistoryStore{db: db}
	if err = store.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *HistoryStore) initTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS transfers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			player_id TEXT NOT NULL,
			team TEXT NOT NULL DEFAULT '',
			actor_id TEXT NOT NULL DEFAULT '',
			seasons TEXT NOT NULL DEFAULT '',
			release_clause INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS transfers_team ON transfers (team, id);`,
		`CREATE INDEX IF NOT EXISTS transfers_player ON transfers (player_id, id);`,
	}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return err
		}
	}
	return nil
}

func (s *HistoryStore) Close() error {
	return s.db.Close()
}

func (s *HistoryStore) PingDB(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db.PingContext(ctx)
}

// Record は出来事を 1 件追加します。CreatedAt が空なら現在時刻を使います。
func (s *HistoryStore) Record(ctx context.Context, e TransferEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transfers (kind, player_id, team, actor_id, seasons, release_clause, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), e.PlayerID, e.Team, e.ActorID, e.Seasons, e.ReleaseClause, e.Reason, e.CreatedAt.UnixMilli())
	return err
}

// Recent は新しい順に最大 limit 件を返します。
func (s *HistoryStore) Recent(ctx context.Context, f HistoryFilter, limit int) ([]TransferEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if f.Team != "" {
		where = append(where, "team = ?")
		args = append(args, f.Team)
	}
	if f.PlayerID != "" {
		where = append(where, "player_id = ?")
		args = append(args, f.PlayerID)
	}
	query := `SELECT id, kind, player_id, team, actor_id, seasons, release_clause, reason, created_at FROM transfers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []TransferEvent
	for rows.Next() {
		var e TransferEvent
		var kind string
		var createdAt int64
		if err := rows.Scan(&e.ID, &kind, &e.PlayerID, &e.Team, &e.ActorID, &e.Seasons, &e.ReleaseClause, &e.Reason, &createdAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		e.CreatedAt = time.UnixMilli(createdAt)
		events = append(events, e)
	}
	return events, rows.Err()
}
