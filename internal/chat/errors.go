package chat

import "errors"

var (
	ErrSelfConversation  = errors.New("cannot start a conversation with yourself")
	ErrConversationGone  = errors.New("conversation not found")
	ErrMessageGone       = errors.New("message not found")
	ErrNotParticipant    = errors.New("not a participant of this conversation")
	ErrEmptyContent      = errors.New("message content is required")
	ErrReplyGone         = errors.New("reply target message not found")
	ErrReplyWrongThread  = errors.New("reply target belongs to a different conversation")
	ErrEmptyEmoji        = errors.New("emoji is required")
)
