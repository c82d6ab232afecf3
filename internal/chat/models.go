package chat

import "time"

// Conversation is an unordered pair of users. At most one row exists per pair;
// lookups treat (a,b) and (b,a) as the same conversation.
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	User1ID   uint64    `gorm:"index:idx_conversation_pair;not null" json:"user1_id"`
	User2ID   uint64    `gorm:"index:idx_conversation_pair;not null" json:"user2_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

type Message struct {
	ID               uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID   uint64    `gorm:"index;not null" json:"conversation_id"`
	SenderID         uint64    `gorm:"index;not null" json:"sender_id"`
	Content          string    `gorm:"type:text;not null" json:"content"`
	Read             bool      `gorm:"not null;default:false" json:"read"`
	ReplyToMessageID *uint64   `gorm:"index" json:"reply_to_message_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// MessageReaction rows are unique per (message, user, emoji); re-submitting
// the same emoji toggles the row off instead of erroring.
type MessageReaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID uint64    `gorm:"not null;index:uniq_message_reaction,unique,priority:1" json:"message_id"`
	UserID    uint64    `gorm:"not null;index:uniq_message_reaction,unique,priority:2" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(32);not null;index:uniq_message_reaction,unique,priority:3" json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

func (MessageReaction) TableName() string { return "message_reactions" }

// Participant is the public slice of the other user shown in conversation lists.
type Participant struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// ConversationSummary enriches a conversation for the inbox view.
type ConversationSummary struct {
	Conversation
	OtherUser     Participant `json:"other_user"`
	LastMessage   string      `json:"last_message"`
	LastMessageAt time.Time   `json:"last_message_at"`
	UnreadCount   int64       `json:"unread_count"`
}

// ReactionGroup aggregates reactions on a message for one emoji.
// Groups appear in the order the underlying rows were first encountered.
type ReactionGroup struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []uint64 `json:"user_ids"`
}
