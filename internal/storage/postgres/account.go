package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Role constants for account privilege levels.
const (
	RolePlayer = "player"
	RoleGM     = "gm"
	RoleAdmin  = "admin"
)

// Roles returns every role, least privileged first.
func Roles() []string {
	return []string{RolePlayer, RoleGM, RoleAdmin}
}

// ValidRole reports whether role is a recognised privilege level.
func ValidRole(role string) bool {
	switch role {
	case RolePlayer, RoleGM, RoleAdmin:
		return true
	}
	return false
}

// Account represents a player account in the database.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// IsAdmin reports whether the account may run administrative commands.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

var (
	// ErrAccountNotFound is returned when an account lookup yields no results.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountExists is returned when attempting to create a duplicate username.
	ErrAccountExists = errors.New("account already exists")
	// ErrInvalidCredentials is returned when authentication fails.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRole is returned when an unrecognised role string is supplied.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidUsername is returned for usernames outside the allowed form.
	ErrInvalidUsername = errors.New("username must be 3-32 letters, digits or underscores")
	// ErrWeakPassword is returned for passwords bcrypt cannot hash safely.
	ErrWeakPassword = errors.New("password must be 6-72 bytes")
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,32}$`)

// ValidateCredentials checks a username and password before an account is created.
func ValidateCredentials(username, password string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if len(password) < 6 || len(password) > 72 {
		return ErrWeakPassword
	}
	return nil
}

// AccountRepository provides account persistence operations.
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates an AccountRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, password_hash, role, created_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, ErrAccountNotFound
	}
	return a, err
}

// Create inserts a new player account with a bcrypt-hashed password.
//
// Postcondition: Returns the created Account, ErrInvalidUsername or
// ErrWeakPassword for bad input, or ErrAccountExists if the username is taken.
func (r *AccountRepository) Create(ctx context.Context, username, password string) (Account, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return Account{}, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return Account{}, fmt.Errorf("hashing password: %w", err)
	}

	acct, err := scanAccount(r.db.QueryRow(ctx,
		`INSERT INTO accounts (username, password_hash) VALUES ($1, $2)
		 RETURNING `+accountColumns,
		username, hash,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return Account{}, ErrAccountExists
		}
		return Account{}, fmt.Errorf("inserting account: %w", err)
	}
	return acct, nil
}

// Authenticate verifies credentials and returns the matching account.
//
// Postcondition: Returns the Account, ErrAccountNotFound for an unknown
// username, or ErrInvalidCredentials for a wrong password.
func (r *AccountRepository) Authenticate(ctx context.Context, username, password string) (Account, error) {
	acct, err := r.GetByUsername(ctx, username)
	if err != nil {
		return Account{}, err
	}
	if !CheckPassword(password, acct.PasswordHash) {
		return Account{}, ErrInvalidCredentials
	}
	return acct, nil
}

// GetByUsername retrieves an account by username.
//
// Postcondition: Returns the Account or ErrAccountNotFound.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (Account, error) {
	acct, err := scanAccount(r.db.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return Account{}, fmt.Errorf("querying account: %w", err)
	}
	return acct, err
}

// SetRole updates the role for the given username.
//
// Postcondition: The role is updated, or ErrInvalidRole / ErrAccountNotFound is returned.
func (r *AccountRepository) SetRole(ctx context.Context, username, role string) error {
	if !ValidRole(role) {
		return ErrInvalidRole
	}
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET role = $1 WHERE username = $2`, role, username)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// HashPassword creates a bcrypt hash of the given password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// isDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505).
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
