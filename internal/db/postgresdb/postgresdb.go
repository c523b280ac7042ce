// Package postgresdb provides the PostgreSQL-backed implementation of the
// storage interface for users, sessions and categories. Schema management
// is delegated to goose migrations.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/avoronkov42/backoffice/internal/models"
)

// PostgresDB is a PostgreSQL-backed implementation of the service storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset enables dropping all public tables before running migrations.
// It is meant for test setups only.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user record and returns it with the generated ID.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *models.User) (*models.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (mail, password) VALUES ($1, $2) RETURNING id`,
		usr.Mail,
		usr.Password,
	)
	if err := row.Scan(&usr.ID); err != nil {
		return nil, err
	}

	return usr, nil
}

// GetUserByMail fetches a user by the mail used as the login identifier.
func (db *PostgresDB) GetUserByMail(ctx context.Context, mail string) (*models.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, mail, password FROM users WHERE mail = $1`,
		mail,
	)

	usr := &models.User{}
	err := row.Scan(&usr.ID, &usr.Mail, &usr.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return usr, nil
}

// CreateSession stores a new login session.
func (db *PostgresDB) CreateSession(ctx context.Context, session *models.Session) error {
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)

	return err
}

// GetSession fetches a session by its identifier.
func (db *PostgresDB) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = $1`,
		sessionID,
	)

	session := &models.Session{}
	err := row.Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrSessionNotFound
		}
		return nil, err
	}

	return session, nil
}

// DeleteSession removes a session. Deleting an absent session is not an error.
func (db *PostgresDB) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM sessions WHERE id = $1`,
		sessionID,
	)

	return err
}

// GetCategories returns all categories that are not soft-deleted,
// in persisted order.
func (db *PostgresDB) GetCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT id, name, deleted_at FROM categories WHERE deleted_at IS NULL ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCategories(rows)
}

// FindCategoriesByName returns non-deleted categories whose name contains
// the given substring, case-insensitively.
func (db *PostgresDB) FindCategoriesByName(
	ctx context.Context,
	substring string,
) ([]models.Category, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT id, name, deleted_at
				FROM categories
				WHERE deleted_at IS NULL
					AND name ILIKE '%' || $1 || '%'
				ORDER BY id
		`,
		substring,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCategories(rows)
}

// GetCategoryByID fetches a category by ID regardless of its deleted state.
func (db *PostgresDB) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, name, deleted_at FROM categories WHERE id = $1`,
		id,
	)

	category := &models.Category{}
	err := row.Scan(&category.ID, &category.Name, &category.DeletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	category.Deleted = category.IsDeleted()

	return category, nil
}

// InsertCategory persists a new category and returns it with the generated ID.
func (db *PostgresDB) InsertCategory(
	ctx context.Context,
	category *models.Category,
) (*models.Category, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO categories (name, deleted_at) VALUES ($1, $2) RETURNING id`,
		category.Name,
		category.DeletedAt,
	)
	if err := row.Scan(&category.ID); err != nil {
		return nil, err
	}
	category.Deleted = category.IsDeleted()

	return category, nil
}

// UpdateCategory replaces the stored name and deleted mark of the row
// with the category's ID. A missing row is reported as models.ErrNotFound.
func (db *PostgresDB) UpdateCategory(ctx context.Context, category *models.Category) error {
	result, err := db.database.ExecContext(
		ctx,
		`UPDATE categories SET name = $2, deleted_at = $3 WHERE id = $1`,
		category.ID,
		category.Name,
		category.DeletedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func scanCategories(rows *sql.Rows) ([]models.Category, error) {
	result := []models.Category{}
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.DeletedAt); err != nil {
			return nil, err
		}
		category.Deleted = category.IsDeleted()
		result = append(result, category)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("error while `db.database.ExecContext()` calling: %w", err)
	}
	return nil
}
