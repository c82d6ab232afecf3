package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/models"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// FindConversationByPair matches either ordering of the two participants.
// Returns (nil, nil) when no conversation exists.
func (r *Repo) FindConversationByPair(ctx context.Context, userA, userB uint64) (*Conversation, error) {
	var conv Conversation
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?)",
			userA, userB, userB, userA).
		First(&conv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *Repo) CreateConversation(ctx context.Context, conv *Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

// GetConversation returns (nil, nil) when the id does not exist.
func (r *Repo) GetConversation(ctx context.Context, id uint64) (*Conversation, error) {
	var conv Conversation
	err := r.db.WithContext(ctx).First(&conv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *Repo) ListConversationsForUser(ctx context.Context, userID uint64) ([]Conversation, error) {
	var convs []Conversation
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&convs).Error; err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *Repo) TouchConversation(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

// DeleteConversation removes all messages first, then the conversation row.
// Reports whether a conversation row existed.
func (r *Repo) DeleteConversation(ctx context.Context, id uint64) (bool, error) {
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", id).
		Delete(&Message{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Delete(&Conversation{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// GetMessage returns (nil, nil) when the id does not exist.
func (r *Repo) GetMessage(ctx context.Context, id uint64) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns messages in chronological chat order.
func (r *Repo) ListMessages(ctx context.Context, conversationID uint64) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// LatestMessage returns (nil, nil) when the conversation has no messages yet.
func (r *Repo) LatestMessage(ctx context.Context, conversationID uint64) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CountUnread counts messages in the conversation not authored by userID that
// are still unread.
func (r *Repo) CountUnread(ctx context.Context, conversationID, userID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND `read` = ?", conversationID, userID, false).
		Count(&n).Error
	return n, err
}

// MarkRead flips read=true for every unread message authored by someone other
// than readerID. Idempotent: repeat calls match zero rows.
func (r *Repo) MarkRead(ctx context.Context, conversationID, readerID uint64) error {
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND `read` = ?", conversationID, readerID, false).
		Update("read", true).Error
}

// FindReaction returns (nil, nil) when the (message, user, emoji) row is absent.
func (r *Repo) FindReaction(ctx context.Context, messageID, userID uint64, emoji string) (*MessageReaction, error) {
	var re MessageReaction
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ? AND emoji = ?", messageID, userID, emoji).
		First(&re).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &re, nil
}

func (r *Repo) InsertReaction(ctx context.Context, re *MessageReaction) error {
	return r.db.WithContext(ctx).Create(re).Error
}

func (r *Repo) DeleteReaction(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&MessageReaction{}, id).Error
}

// ListReactions returns all reactions on a message in row order.
func (r *Repo) ListReactions(ctx context.Context, messageID uint64) ([]MessageReaction, error) {
	var res []MessageReaction
	if err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Order("id ASC").
		Find(&res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

// GetUser resolves a participant's public profile fields.
func (r *Repo) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
