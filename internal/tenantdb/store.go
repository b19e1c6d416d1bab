package tenantdb

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/hivechat/hivechat/internal/types"
)

// MessageStore is the tenant-scoped persistence for channel content. Each
// tenant owns one store, so there is no cross-tenant write contention.
type MessageStore interface {
	CreateMessage(msg types.ChannelMessage) (types.ChannelMessage, error)
	GetMessages(channelId, skip, limit, daysBack int) ([]types.ChannelMessage, error)
	GetAllMessages(channelId, skip, limit int) ([]types.ChannelMessage, error)
	ListSince(channelId int, since time.Time) ([]types.ChannelMessage, error)
	ArchiveOlderThan(days int) (int64, error)
}

const tenantSchema = `
CREATE TABLE IF NOT EXISTS channel_messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	channel_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	message TEXT NOT NULL,
	response TEXT,
	provider TEXT,
	message_type TEXT NOT NULL DEFAULT 'user',
	file_url TEXT,
	file_name TEXT,
	file_type TEXT,
	is_archived INTEGER NOT NULL DEFAULT 0,
	message_length INTEGER,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_channel_messages_channel_created
	ON channel_messages (channel_id, created_at);
`

// Store is a MessageStore backed by a single SQLite database file.
type Store struct {
	conn *sql.DB
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// SQLite allows one writer at a time; serializing through a single
	// connection avoids SQLITE_BUSY under concurrent pipeline runs.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(tenantSchema); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{conn: db}, nil
}

func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Store) CreateMessage(msg types.ChannelMessage) (types.ChannelMessage, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	var fileUrl, fileName, fileType *string
	if msg.Attachment != nil {
		fileUrl = &msg.Attachment.FileUrl
		fileName = &msg.Attachment.FileName
		fileType = &msg.Attachment.FileType
	}

	res := s.conn.QueryRow(
		"INSERT INTO channel_messages (channel_id, user_id, message, response, provider, message_type, "+
			"file_url, file_name, file_type, message_length, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id",
		msg.ChannelId,
		msg.UserId,
		msg.Message,
		msg.Response,
		msg.Provider,
		msg.MessageType,
		fileUrl,
		fileName,
		fileType,
		len(msg.Message),
		msg.CreatedAt,
	)

	err := res.Scan(&msg.Id)
	return msg, err
}

// GetMessages returns a channel's unarchived messages from the last daysBack
// days, newest first.
func (s *Store) GetMessages(channelId, skip, limit, daysBack int) ([]types.ChannelMessage, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)

	rows, err := s.conn.Query(
		"SELECT id, channel_id, user_id, message, response, provider, message_type, "+
			"file_url, file_name, file_type, is_archived, created_at "+
			"FROM channel_messages "+
			"WHERE channel_id = ? AND is_archived = 0 AND created_at >= ? "+
			"ORDER BY created_at DESC LIMIT ? OFFSET ?",
		channelId,
		cutoff,
		limit,
		skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetAllMessages returns a channel's messages including archived ones,
// newest first.
func (s *Store) GetAllMessages(channelId, skip, limit int) ([]types.ChannelMessage, error) {
	rows, err := s.conn.Query(
		"SELECT id, channel_id, user_id, message, response, provider, message_type, "+
			"file_url, file_name, file_type, is_archived, created_at "+
			"FROM channel_messages WHERE channel_id = ? "+
			"ORDER BY created_at DESC LIMIT ? OFFSET ?",
		channelId,
		limit,
		skip,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListSince returns a channel's messages created at or after since, in
// chronological order. Used as conversation memory for the responder.
func (s *Store) ListSince(channelId int, since time.Time) ([]types.ChannelMessage, error) {
	rows, err := s.conn.Query(
		"SELECT id, channel_id, user_id, message, response, provider, message_type, "+
			"file_url, file_name, file_type, is_archived, created_at "+
			"FROM channel_messages WHERE channel_id = ? AND created_at >= ? "+
			"ORDER BY created_at ASC",
		channelId,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ArchiveOlderThan flags messages older than the given number of days and
// returns how many rows were flagged. Archival never deletes.
func (s *Store) ArchiveOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	res, err := s.conn.Exec(
		"UPDATE channel_messages SET is_archived = 1 WHERE created_at < ? AND is_archived = 0",
		cutoff,
	)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func scanMessages(rows *sql.Rows) ([]types.ChannelMessage, error) {
	var messages []types.ChannelMessage
	for rows.Next() {
		var (
			msg                         types.ChannelMessage
			fileUrl, fileName, fileType sql.NullString
		)
		if err := rows.Scan(
			&msg.Id,
			&msg.ChannelId,
			&msg.UserId,
			&msg.Message,
			&msg.Response,
			&msg.Provider,
			&msg.MessageType,
			&fileUrl,
			&fileName,
			&fileType,
			&msg.IsArchived,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}

		if fileUrl.Valid {
			msg.Attachment = &types.Attachment{
				Id:       strconv.Itoa(msg.Id),
				FileUrl:  fileUrl.String,
				FileName: fileName.String,
				FileType: fileType.String,
			}
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
