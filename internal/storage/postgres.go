package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// datasetColumns is the column list for dataset SELECTs, one place for all of them.
const datasetColumns = `id, owner_id, original_filename, stored_name, uploaded_at,
	row_count, column_names, numeric_columns, summary`

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// PostgresStore implements Store over a pgx connection pool. Plain SQL,
// no ORM.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and verifies it with a ping.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping reports database reachability for the health endpoint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateDataset(ctx context.Context, ownerID int64, filename, storedName string, sum *models.Summary) (*models.Dataset, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Reserve the id first so the stored summary payload can carry it.
	var id int64
	if err := tx.QueryRow(ctx,
		`SELECT nextval(pg_get_serial_sequence('datasets', 'id'))`,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("reserving dataset id: %w", err)
	}

	stored := *sum
	stored.DatasetID = id

	payload, err := json.Marshal(&stored)
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}

	var uploadedAt time.Time
	if err := tx.QueryRow(ctx, `
		INSERT INTO datasets
			(id, owner_id, original_filename, stored_name, row_count, column_names, numeric_columns, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING uploaded_at`,
		id, ownerID, filename, storedName, stored.Rows, stored.ColumnNames, stored.NumericColumns, payload,
	).Scan(&uploadedAt); err != nil {
		return nil, fmt.Errorf("inserting dataset: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing dataset: %w", err)
	}

	return &models.Dataset{
		ID:               id,
		OwnerID:          ownerID,
		OriginalFilename: filename,
		StoredName:       storedName,
		UploadedAt:       uploadedAt,
		RowCount:         stored.Rows,
		ColumnNames:      stored.ColumnNames,
		NumericColumns:   stored.NumericColumns,
		Summary:          &stored,
	}, nil
}

func (s *PostgresStore) GetDataset(ctx context.Context, id int64) (*models.Dataset, error) {
	query := fmt.Sprintf(`SELECT %s FROM datasets WHERE id = $1`, datasetColumns)

	d := &models.Dataset{}
	var payload []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.OwnerID, &d.OriginalFilename, &d.StoredName, &d.UploadedAt,
		&d.RowCount, &d.ColumnNames, &d.NumericColumns, &payload,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}

	d.Summary = &models.Summary{}
	if err := json.Unmarshal(payload, d.Summary); err != nil {
		return nil, fmt.Errorf("decoding cached summary: %w", err)
	}

	return d, nil
}

func (s *PostgresStore) History(ctx context.Context, ownerID int64, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, original_filename, stored_name, uploaded_at, row_count, column_names
		FROM datasets
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $2`,
		ownerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var e models.HistoryEntry
		if err := rows.Scan(&e.ID, &e.OriginalFilename, &e.StoredName, &e.UploadedAt, &e.RowCount, &e.ColumnNames); err != nil {
			return nil, fmt.Errorf("scanning history entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}

	return entries, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	u := &models.User{Username: username, PasswordHash: passwordHash}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		username, passwordHash,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrExists
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users
		WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetching user: %w", err)
	}
	return u, nil
}

func (s *PostgresStore) GetOrCreateToken(ctx context.Context, userID int64, candidateKey string) (*models.Token, error) {
	// The no-op update on conflict makes RETURNING yield the existing row,
	// so concurrent logins race safely to the same token.
	t := &models.Token{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = auth_tokens.user_id
		RETURNING key, user_id, created`,
		candidateKey, userID,
	).Scan(&t.Key, &t.UserID, &t.Created)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) GetTokenUser(ctx context.Context, key string) (*models.User, error) {
	u := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.username, u.password_hash, u.created_at
		FROM auth_tokens t
		JOIN users u ON u.id = t.user_id
		WHERE t.key = $1`,
		key,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolving token: %w", err)
	}
	return u, nil
}

// Ensure PostgresStore implements Store
var _ Store = (*PostgresStore)(nil)
