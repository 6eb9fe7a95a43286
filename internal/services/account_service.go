package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/anahisv/whisperbox-be/internal/mailer"
	"github.com/anahisv/whisperbox-be/internal/models"
)

// AccountServiceProvider defines the interface for account services.
type AccountServiceProvider interface {
	Register(username, email, password string) error
	VerifyCode(username, code string) error
	IsUsernameAvailable(username string) (bool, error)
	Authenticate(identifier, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	SetAcceptingMessages(id string, accepting bool) (models.User, error)
	DeleteStaleUnverified(expiredBefore time.Time) (int64, error)
}

// AccountService provides business logic for registration, verification and
// sign-in.
type AccountService struct {
	db     *sql.DB
	mailer mailer.Mailer
}

// NewAccountService creates a new AccountService.
func NewAccountService(db *sql.DB, m mailer.Mailer) *AccountService {
	return &AccountService{db: db, mailer: m}
}

// Register creates a new unverified account, or refreshes the pending one if
// the email already belongs to an unverified user (new password, new code,
// new expiry; last writer wins under concurrent retries). A verified username
// or email can never be re-registered. The verification email is sent after
// the row is persisted, so a delivery failure leaves the pending account in
// place while the operation still reports failure.
func (s *AccountService) Register(username, email, password string) error {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ? AND is_verified = 1", username).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return ErrUsernameTaken
	}

	code, err := newVerifyCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	expiry := time.Now().Add(verifyCodeTTL)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var existingID string
	var verified int
	err = s.db.QueryRow("SELECT id, is_verified FROM users WHERE email = ?", email).Scan(&existingID, &verified)
	switch {
	case err == sql.ErrNoRows:
		_, err = s.db.Exec(
			"INSERT INTO users(id, username, email, password_hash, verify_code, verify_code_expiry, is_verified, is_accepting_messages) VALUES(?, ?, ?, ?, ?, ?, 0, 1)",
			uuid.New().String(), username, email, string(hashedPassword), code, expiry,
		)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case verified == 1:
		return ErrEmailTaken
	default:
		_, err = s.db.Exec(
			"UPDATE users SET password_hash = ?, verify_code = ?, verify_code_expiry = ? WHERE id = ?",
			string(hashedPassword), code, expiry, existingID,
		)
		if err != nil {
			return err
		}
	}

	if err := s.mailer.SendVerificationCode(email, username, code); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// VerifyCode marks the account verified if the submitted code matches and has
// not expired. Expiry is checked before the match so a stale correct code
// reports as expired. The transition is one-shot.
func (s *AccountService) VerifyCode(username, code string) error {
	var id, storedCode string
	var expiry time.Time
	err := s.db.QueryRow("SELECT id, verify_code, verify_code_expiry FROM users WHERE username = ?", username).
		Scan(&id, &storedCode, &expiry)
	if err == sql.ErrNoRows {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	if !time.Now().Before(expiry) {
		return ErrCodeExpired
	}
	if storedCode != code {
		return ErrCodeInvalid
	}

	_, err = s.db.Exec("UPDATE users SET is_verified = 1 WHERE id = ?", id)
	return err
}

// IsUsernameAvailable reports whether no verified user holds the username.
// A pending unverified holder does not count: the name frees up again unless
// its owner completes verification.
func (s *AccountService) IsUsernameAvailable(username string) (bool, error) {
	var exists int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users WHERE username = ? AND is_verified = 1", username).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

// Authenticate verifies credentials and returns the account. The identifier
// matches either email or username. Unverified accounts cannot sign in.
func (s *AccountService) Authenticate(identifier, password string) (models.User, error) {
	user, err := s.getUser("SELECT "+userColumns+" FROM users WHERE email = ? OR username = ?", identifier, identifier)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}

	if !user.IsVerified {
		return models.User{}, ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *AccountService) GetUserByID(id string) (models.User, error) {
	user, err := s.getUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	if err == sql.ErrNoRows {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

// SetAcceptingMessages overwrites the accept-messages flag unconditionally
// and returns the updated account. Outstanding session tokens keep their
// stale snapshot of the flag until re-login.
func (s *AccountService) SetAcceptingMessages(id string, accepting bool) (models.User, error) {
	res, err := s.db.Exec("UPDATE users SET is_accepting_messages = ? WHERE id = ?", boolToInt(accepting), id)
	if err != nil {
		return models.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if affected == 0 {
		return models.User{}, ErrUserNotFound
	}
	return s.GetUserByID(id)
}

// DeleteStaleUnverified removes unverified accounts whose verification code
// expired before the cutoff. Used only by the optional cleanup sweeper.
func (s *AccountService) DeleteStaleUnverified(expiredBefore time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM users WHERE is_verified = 0 AND verify_code_expiry < ?", expiredBefore)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const userColumns = "id, username, email, password_hash, verify_code, verify_code_expiry, is_verified, is_accepting_messages, created_at"

func (s *AccountService) getUser(query string, args ...any) (models.User, error) {
	var user models.User
	var verified, accepting int
	err := s.db.QueryRow(query, args...).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.VerifyCode, &user.VerifyCodeExpiry, &verified, &accepting, &user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	user.IsVerified = verified == 1
	user.IsAcceptingMessages = accepting == 1
	return user, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
