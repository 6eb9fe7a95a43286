package services

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/anahisv/whisperbox-be/internal/models"
)

// MessageServiceProvider defines the interface for message services.
type MessageServiceProvider interface {
	SendMessage(username, content string) (models.Message, error)
	ListMessages(userID string, limit, offset int) ([]models.Message, error)
	DeleteMessage(userID, messageID string) error
}

// MessageService provides business logic for the anonymous inbox.
type MessageService struct {
	db *sql.DB
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *sql.DB) *MessageService {
	return &MessageService{db: db}
}

// SendMessage appends an anonymous message to the recipient's inbox. The
// sender is never recorded. Recipients with the accept-messages flag off
// reject the message outright.
func (s *MessageService) SendMessage(username, content string) (models.Message, error) {
	var userID string
	var accepting int
	err := s.db.QueryRow("SELECT id, is_accepting_messages FROM users WHERE username = ?", username).
		Scan(&userID, &accepting)
	if err == sql.ErrNoRows {
		return models.Message{}, ErrUserNotFound
	}
	if err != nil {
		return models.Message{}, err
	}
	if accepting == 0 {
		return models.Message{}, ErrNotAcceptingMessages
	}

	message := models.Message{
		ID:        uuid.New().String(),
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO messages(id, user_id, content, created_at) VALUES(?, ?, ?, ?)",
		message.ID, message.UserID, message.Content, message.CreatedAt,
	)
	if err != nil {
		return models.Message{}, err
	}
	return message, nil
}

// ListMessages returns the owner's messages newest first. A non-positive
// limit returns everything; limit/offset paginate when supplied.
func (s *MessageService) ListMessages(userID string, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(
		"SELECT id, user_id, content, created_at FROM messages WHERE user_id = ? ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DeleteMessage removes one message belonging to the owner. A message id
// under a different owner matches nothing, so cross-owner deletes fail the
// same way as deleting a message that never existed.
func (s *MessageService) DeleteMessage(userID, messageID string) error {
	res, err := s.db.Exec("DELETE FROM messages WHERE id = ? AND user_id = ?", messageID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
