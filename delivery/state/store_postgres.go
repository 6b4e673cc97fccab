package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// PostgresConfig configures the durable session store.
type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// PostgresStore keeps sessions in a single Postgres table so in-flight
// dialogues survive a process restart. It implements the same Store
// contract as MemoryStore.
type PostgresStore struct {
	db *bun.DB
}

type sessionRow struct {
	bun.BaseModel `bun:"table:bot_sessions,alias:bs"`

	UserID    string    `bun:"user_id,pk"`
	Payload   []byte    `bun:"payload,type:jsonb,nullzero"`
	Messages  []int     `bun:"messages,type:jsonb"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// StoreOption customizes PostgresStore.
type StoreOption func(*PostgresStore)

// WithDB substitutes an already built bun.DB, mainly for tests.
func WithDB(db *bun.DB) StoreOption {
	return func(s *PostgresStore) {
		if db != nil {
			s.db = db
		}
	}
}

func NewPostgresStore(cfg PostgresConfig, opts ...StoreOption) (*PostgresStore, error) {
	store := &PostgresStore{}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	if store.db == nil {
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			return nil, errors.New("postgres dsn is required")
		}
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		sqldb := sql.OpenDB(pgdriver.NewConnector(
			pgdriver.WithDSN(dsn),
			pgdriver.WithTimeout(timeout),
		))
		store.db = bun.NewDB(sqldb, pgdialect.New())
	}

	return store, nil
}

// Init creates the sessions table when it does not exist yet.
func (s *PostgresStore) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*sessionRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*ConversationState, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}

	row := new(sessionRow)
	err := s.db.NewSelect().
		Model(row).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(row.Payload) == 0 {
		return nil, ErrStateNotFound
	}

	var st ConversationState
	if err := json.Unmarshal(row.Payload, &st); err != nil {
		return nil, fmt.Errorf("unmarshal session state: %w", err)
	}
	return &st, nil
}

func (s *PostgresStore) Set(ctx context.Context, userID string, st *ConversationState) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	if st == nil {
		return ErrNilState
	}

	stored := st.Clone()
	stored.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}

	row := &sessionRow{
		UserID:    userID,
		Payload:   payload,
		UpdatedAt: stored.UpdatedAt,
	}
	_, err = s.db.NewInsert().
		Model(row).
		On("CONFLICT (user_id) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	// Only the session payload is cleared; queued message ids stay until
	// the next flush, same as MemoryStore.
	_, err := s.db.NewUpdate().
		Model((*sessionRow)(nil)).
		Set("payload = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *PostgresStore) PushBotMessage(ctx context.Context, userID string, messageID int) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(sessionRow)
		err := tx.NewSelect().
			Model(row).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			row = &sessionRow{
				UserID:    userID,
				Messages:  []int{messageID},
				UpdatedAt: time.Now().UTC(),
			}
			if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
				return fmt.Errorf("insert message queue: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("load message queue: %w", err)
		}

		row.Messages = append(row.Messages, messageID)
		_, err = tx.NewUpdate().
			Model(row).
			Column("messages").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update message queue: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) FlushBotMessages(ctx context.Context, userID string) ([]int, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUser
	}

	var ids []int
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := new(sessionRow)
		err := tx.NewSelect().
			Model(row).
			Where("user_id = ?", userID).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load message queue: %w", err)
		}

		ids = row.Messages
		row.Messages = nil
		_, err = tx.NewUpdate().
			Model(row).
			Column("messages").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("reset message queue: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
