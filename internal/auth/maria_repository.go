package auth

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MariaConfig contains connection settings for MariaDB.
type MariaConfig struct {
	Host     string // e.g. localhost
	Port     int    // e.g. 3306
	Database string // e.g. arsenal
	Username string
	Password string
}

// MariaUserRepo implements UserRepository on MariaDB for deployments without
// MongoDB. The embedded equipment arrays are stored as JSON columns and every
// mutation is a single guarded UPDATE, so the row lock gives the same
// no-lost-update guarantee the Mongo repository gets from conditional writes.
type MariaUserRepo struct {
	db *sql.DB
}

// NewMariaUserRepo opens the connection and returns the repository.
func NewMariaUserRepo(cfg MariaConfig) (*MariaUserRepo, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	if cfg.Database == "" {
		cfg.Database = "arsenal"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to MariaDB: %w", err)
	}

	repo := &MariaUserRepo{db: db}
	if err := repo.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return repo, nil
}

func (m *MariaUserRepo) createTables() error {
	createUsersTable := `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(24) PRIMARY KEY,
		username VARCHAR(20) NOT NULL,
		username_lower VARCHAR(20) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(10) NOT NULL DEFAULT 'user',
		avatar VARCHAR(255) NOT NULL DEFAULT '',
		selected_character VARCHAR(24) NULL,
		loadout JSON NOT NULL,
		loadouts JSON NOT NULL,
		stats JSON NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`

	if _, err := m.db.Exec(createUsersTable); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

const userColumns = `id, username, email, password_hash, role, avatar,
	selected_character, loadout, loadouts, stats, created_at, updated_at`

func (m *MariaUserRepo) scanUser(row *sql.Row) (*User, error) {
	var user User
	var selected sql.NullString
	var loadoutJSON, loadoutsJSON, statsJSON []byte

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Avatar,
		&selected,
		&loadoutJSON,
		&loadoutsJSON,
		&statsJSON,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user row: %w", err)
	}

	if selected.Valid {
		user.SelectedCharacter = selected.String
	}
	if err := json.Unmarshal(loadoutJSON, &user.Loadout); err != nil {
		return nil, fmt.Errorf("failed to decode loadout column: %w", err)
	}
	if err := json.Unmarshal(loadoutsJSON, &user.Loadouts); err != nil {
		return nil, fmt.Errorf("failed to decode loadouts column: %w", err)
	}
	if err := json.Unmarshal(statsJSON, &user.Stats); err != nil {
		return nil, fmt.Errorf("failed to decode stats column: %w", err)
	}
	return &user, nil
}

// GetUserByID implements UserRepository.
func (m *MariaUserRepo) GetUserByID(id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return m.scanUser(m.db.QueryRow(query, id))
}

// GetUserByUsername implements UserRepository.
func (m *MariaUserRepo) GetUserByUsername(username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username_lower = ?`
	return m.scanUser(m.db.QueryRow(query, strings.ToLower(username)))
}

// GetUserByEmail implements UserRepository.
func (m *MariaUserRepo) GetUserByEmail(email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return m.scanUser(m.db.QueryRow(query, strings.ToLower(email)))
}

// CreateUser inserts a new account with empty equipment state.
func (m *MariaUserRepo) CreateUser(username, email, passwordHash string, role Role) (*User, error) {
	now := time.Now()
	id := primitive.NewObjectID().Hex()
	statsJSON, _ := json.Marshal(DefaultStats())

	query := `INSERT INTO users
		(id, username, username_lower, email, password_hash, role, loadout, loadouts, stats, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, '[]', '[]', ?, ?, ?)`

	_, err := m.db.Exec(query, id, username, strings.ToLower(username),
		strings.ToLower(email), passwordHash, string(role), statsJSON, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			if strings.Contains(err.Error(), "email") {
				return nil, ErrEmailExists
			}
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return m.GetUserByID(id)
}

// ValidateCredentials implements UserRepository.
func (m *MariaUserRepo) ValidateCredentials(email, password string) (*User, error) {
	user, err := m.GetUserByEmail(email)
	if err == ErrUserNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ListUsers implements UserRepository.
func (m *MariaUserRepo) ListUsers() ([]*User, error) {
	query := `SELECT id FROM users ORDER BY created_at DESC`
	rows, err := m.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		user, err := m.GetUserByID(id)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountUsers implements UserRepository.
func (m *MariaUserRepo) CountUsers() (int64, int64, error) {
	var total, admins int64
	if err := m.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := m.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&admins); err != nil {
		return 0, 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return total, admins, nil
}

// AddLoadoutWeapon implements UserRepository. The membership and capacity
// guards sit in the WHERE clause of a single UPDATE.
func (m *MariaUserRepo) AddLoadoutWeapon(userID, weaponID string) (*User, error) {
	query := `UPDATE users
		SET loadout = JSON_ARRAY_APPEND(loadout, '$', ?)
		WHERE id = ?
		  AND NOT JSON_CONTAINS(loadout, JSON_QUOTE(?), '$')
		  AND JSON_LENGTH(loadout) < ?`

	res, err := m.db.Exec(query, weaponID, userID, weaponID, MaxLoadoutWeapons)
	if err != nil {
		return nil, fmt.Errorf("failed to add loadout weapon: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 1 {
		return m.GetUserByID(userID)
	}

	user, err := m.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	for _, id := range user.Loadout {
		if id == weaponID {
			return user, nil // idempotent re-add
		}
	}
	return nil, ErrLoadoutFull
}

// RemoveLoadoutWeapon implements UserRepository.
func (m *MariaUserRepo) RemoveLoadoutWeapon(userID, weaponID string) (*User, error) {
	// JSON_SEARCH yields NULL when the weapon is absent; COALESCE keeps the
	// array unchanged in that case.
	query := `UPDATE users
		SET loadout = COALESCE(
			JSON_REMOVE(loadout, JSON_UNQUOTE(JSON_SEARCH(loadout, 'one', ?))),
			loadout)
		WHERE id = ?`

	if _, err := m.db.Exec(query, weaponID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove loadout weapon: %w", err)
	}
	return m.GetUserByID(userID)
}

// SetSelectedCharacter implements UserRepository.
func (m *MariaUserRepo) SetSelectedCharacter(userID, characterID string) (*User, error) {
	query := `UPDATE users SET selected_character = ? WHERE id = ?`
	if _, err := m.db.Exec(query, characterID, userID); err != nil {
		return nil, fmt.Errorf("failed to set selected character: %w", err)
	}
	return m.GetUserByID(userID)
}

// AddNamedLoadout implements UserRepository.
func (m *MariaUserRepo) AddNamedLoadout(userID, name string, weaponIDs []string) (*NamedLoadout, error) {
	entry := NamedLoadout{
		ID:        primitive.NewObjectID().Hex(),
		Name:      name,
		Weapons:   append([]string{}, weaponIDs...),
		CreatedAt: time.Now(),
	}
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}

	query := `UPDATE users
		SET loadouts = JSON_ARRAY_APPEND(loadouts, '$', CAST(? AS JSON))
		WHERE id = ? AND JSON_LENGTH(loadouts) < ?`

	res, err := m.db.Exec(query, entryJSON, userID, MaxNamedLoadouts)
	if err != nil {
		return nil, fmt.Errorf("failed to add named loadout: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if _, err := m.GetUserByID(userID); err != nil {
			return nil, err
		}
		return nil, ErrLoadoutLimit
	}
	return &entry, nil
}

// RemoveNamedLoadout implements UserRepository.
func (m *MariaUserRepo) RemoveNamedLoadout(userID, loadoutID string) (*User, error) {
	query := `UPDATE users
		SET loadouts = COALESCE(
			JSON_REMOVE(loadouts, JSON_UNQUOTE(REPLACE(JSON_SEARCH(loadouts, 'one', ?, NULL, '$[*].id'), '.id', ''))),
			loadouts)
		WHERE id = ?`

	if _, err := m.db.Exec(query, loadoutID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove named loadout: %w", err)
	}
	return m.GetUserByID(userID)
}

// Close closes the database connection.
func (m *MariaUserRepo) Close() error {
	return m.db.Close()
}
