package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func registerVerified(t *testing.T, db *sql.DB, username, email string) string {
	t.Helper()
	accounts := NewAccountService(db, newMailerOK())
	require.NoError(t, accounts.Register(username, email, "pw1"))
	require.NoError(t, accounts.VerifyCode(username, storedCode(t, db, username)))
	var id string
	require.NoError(t, db.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&id))
	return id
}

func insertMessage(t *testing.T, db *sql.DB, userID, content string, at time.Time) string {
	t.Helper()
	id := uuid.New().String()
	_, err := db.Exec("INSERT INTO messages(id, user_id, content, created_at) VALUES(?, ?, ?, ?)", id, userID, content, at)
	require.NoError(t, err)
	return id
}

func TestSendMessage(t *testing.T) {
	t.Run("unknown recipient", func(t *testing.T) {
		svc := NewMessageService(newTestDB(t))
		_, err := svc.SendMessage("ghost", "hi")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("appends while accepting, rejects after toggle", func(t *testing.T) {
		db := newTestDB(t)
		userID := registerVerified(t, db, "neo", "neo@x.com")
		accounts := NewAccountService(db, newMailerOK())
		svc := NewMessageService(db)

		message, err := svc.SendMessage("neo", "hi")
		require.NoError(t, err)
		require.Equal(t, userID, message.UserID)
		require.Equal(t, "hi", message.Content)

		_, err = accounts.SetAcceptingMessages(userID, false)
		require.NoError(t, err)

		_, err = svc.SendMessage("neo", "hi2")
		require.ErrorIs(t, err, ErrNotAcceptingMessages)

		// Nothing was appended by the rejected send
		messages, err := svc.ListMessages(userID, 0, 0)
		require.NoError(t, err)
		require.Len(t, messages, 1)
	})

	t.Run("unverified recipients with the flag on still receive", func(t *testing.T) {
		db := newTestDB(t)
		accounts := NewAccountService(db, newMailerOK())
		require.NoError(t, accounts.Register("pending", "pending@x.com", "pw1"))
		svc := NewMessageService(db)

		_, err := svc.SendMessage("pending", "hello there")
		require.NoError(t, err)
	})
}

func TestListMessages(t *testing.T) {
	db := newTestDB(t)
	userID := registerVerified(t, db, "neo", "neo@x.com")
	svc := NewMessageService(db)

	t.Run("empty inbox lists empty, not nil", func(t *testing.T) {
		messages, err := svc.ListMessages(userID, 0, 0)
		require.NoError(t, err)
		require.NotNil(t, messages)
		require.Empty(t, messages)
	})

	base := time.Now().UTC().Truncate(time.Second)
	for i, content := range []string{"first", "second", "third", "fourth", "fifth"} {
		insertMessage(t, db, userID, content, base.Add(time.Duration(i)*time.Second))
	}

	t.Run("newest first", func(t *testing.T) {
		messages, err := svc.ListMessages(userID, 0, 0)
		require.NoError(t, err)
		require.Len(t, messages, 5)
		contents := make([]string, len(messages))
		for i, m := range messages {
			contents[i] = m.Content
		}
		require.Equal(t, []string{"fifth", "fourth", "third", "second", "first"}, contents)
		for i := 1; i < len(messages); i++ {
			require.False(t, messages[i].CreatedAt.After(messages[i-1].CreatedAt))
		}
	})

	t.Run("limit and offset paginate", func(t *testing.T) {
		page, err := svc.ListMessages(userID, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "fifth", page[0].Content)

		page, err = svc.ListMessages(userID, 2, 2)
		require.NoError(t, err)
		require.Len(t, page, 2)
		require.Equal(t, "third", page[0].Content)
	})

	t.Run("only the owner's messages", func(t *testing.T) {
		otherID := registerVerified(t, db, "trinity", "trinity@x.com")
		insertMessage(t, db, otherID, "for trinity", base)

		messages, err := svc.ListMessages(userID, 0, 0)
		require.NoError(t, err)
		require.Len(t, messages, 5)
	})
}

func TestSendThenListRoundTrip(t *testing.T) {
	db := newTestDB(t)
	userID := registerVerified(t, db, "neo", "neo@x.com")
	svc := NewMessageService(db)

	sent := []string{"one", "two", "three"}
	for _, content := range sent {
		_, err := svc.SendMessage("neo", content)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	messages, err := svc.ListMessages(userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, len(sent))
	for i, m := range messages {
		require.Equal(t, sent[len(sent)-1-i], m.Content)
	}
}

func TestDeleteMessage(t *testing.T) {
	db := newTestDB(t)
	userID := registerVerified(t, db, "neo", "neo@x.com")
	otherID := registerVerified(t, db, "trinity", "trinity@x.com")
	svc := NewMessageService(db)

	mine := insertMessage(t, db, userID, "mine", time.Now().UTC())
	theirs := insertMessage(t, db, otherID, "theirs", time.Now().UTC())

	t.Run("owner deletes own message", func(t *testing.T) {
		require.NoError(t, svc.DeleteMessage(userID, mine))
	})

	t.Run("second delete reports not found and changes nothing", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteMessage(userID, mine), ErrMessageNotFound)

		var count int
		require.NoError(t, db.QueryRow("SELECT COUNT(1) FROM messages").Scan(&count))
		require.Equal(t, 1, count)
	})

	t.Run("cross-owner delete matches nothing", func(t *testing.T) {
		require.ErrorIs(t, svc.DeleteMessage(userID, theirs), ErrMessageNotFound)

		messages, err := svc.ListMessages(otherID, 0, 0)
		require.NoError(t, err)
		require.Len(t, messages, 1)
	})
}
