package chat

import (
	"context"
	"sort"
	"strings"

	"github.com/YFrancis10/MeMantra-sub001/internal/models"
)

// Notifier delivers a push for a freshly sent message. Implemented by the
// notify service; send succeeds even when notification enqueueing fails.
type Notifier interface {
	NewMessage(ctx context.Context, recipientID uint64, sender *models.User, msg *Message) error
}

type Service struct {
	repo     *Repo
	notifier Notifier
}

func NewService(repo *Repo, notifier Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// FindOrCreate returns the conversation between the two users, creating it if
// absent. (a,b) and (b,a) resolve to the same row. The created flag drives the
// 200-vs-201 distinction at the HTTP layer.
func (s *Service) FindOrCreate(ctx context.Context, userA, userB uint64) (*Conversation, bool, error) {
	if userA == userB {
		return nil, false, ErrSelfConversation
	}

	existing, err := s.repo.FindConversationByPair(ctx, userA, userB)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	conv := &Conversation{User1ID: userA, User2ID: userB}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, false, err
	}
	return conv, true, nil
}

// Get loads a conversation for one of its participants.
func (s *Service) Get(ctx context.Context, conversationID, userID uint64) (*Conversation, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationGone
	}
	if !isMember(conv, userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

// IsParticipant reports whether userID belongs to the conversation.
// A missing conversation yields false, not an error.
func (s *Service) IsParticipant(ctx context.Context, conversationID, userID uint64) (bool, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return false, err
	}
	return conv != nil && isMember(conv, userID), nil
}

func isMember(conv *Conversation, userID uint64) bool {
	return conv.User1ID == userID || conv.User2ID == userID
}

func otherMember(conv *Conversation, userID uint64) uint64 {
	if conv.User1ID == userID {
		return conv.User2ID
	}
	return conv.User1ID
}

// ListForUser returns every conversation the user takes part in, enriched with
// the other participant, the latest message and the unread count, sorted by
// last activity (latest message time, or creation time when empty), newest
// first. Equal timestamps keep store order.
func (s *Service) ListForUser(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	convs, err := s.repo.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		summary := ConversationSummary{
			Conversation:  conv,
			LastMessageAt: conv.CreatedAt,
		}

		otherID := otherMember(&conv, userID)
		if other, err := s.repo.GetUser(ctx, otherID); err != nil {
			return nil, err
		} else if other != nil {
			summary.OtherUser = Participant{ID: other.ID, Username: other.Username}
		} else {
			summary.OtherUser = Participant{ID: otherID}
		}

		latest, err := s.repo.LatestMessage(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		if latest != nil {
			summary.LastMessage = latest.Content
			summary.LastMessageAt = latest.CreatedAt
		}

		unread, err := s.repo.CountUnread(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		summary.UnreadCount = unread

		out = append(out, summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out, nil
}

// ListMessages returns the conversation's messages in chronological order.
func (s *Service) ListMessages(ctx context.Context, conversationID, userID uint64) ([]Message, error) {
	ok, err := s.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}
	return s.repo.ListMessages(ctx, conversationID)
}

// Send appends a message to the conversation. Replies must target a message in
// the same conversation; violations are rejected before any row is written.
func (s *Service) Send(ctx context.Context, conversationID, senderID uint64, content string, replyToID *uint64) (*Message, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil || !isMember(conv, senderID) {
		return nil, ErrNotParticipant
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}

	if replyToID != nil {
		target, err := s.repo.GetMessage(ctx, *replyToID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, ErrReplyGone
		}
		if target.ConversationID != conversationID {
			return nil, ErrReplyWrongThread
		}
	}

	msg := &Message{
		ConversationID:   conversationID,
		SenderID:         senderID,
		Content:          content,
		Read:             false,
		ReplyToMessageID: replyToID,
	}
	if err := s.repo.InsertMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.repo.TouchConversation(ctx, conversationID); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		sender, err := s.repo.GetUser(ctx, senderID)
		if err == nil && sender != nil {
			// best effort; a dead queue must not fail the send
			_ = s.notifier.NewMessage(ctx, otherMember(conv, senderID), sender, msg)
		}
	}

	return msg, nil
}

// MarkRead flips every unread message from the other participant to read.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID uint64) error {
	ok, err := s.IsParticipant(ctx, conversationID, readerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotParticipant
	}
	return s.repo.MarkRead(ctx, conversationID, readerID)
}

func (s *Service) CountUnread(ctx context.Context, conversationID, userID uint64) (int64, error) {
	return s.repo.CountUnread(ctx, conversationID, userID)
}

// Delete removes the conversation and all of its messages.
func (s *Service) Delete(ctx context.Context, conversationID, userID uint64) error {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationGone
	}
	if !isMember(conv, userID) {
		return ErrNotParticipant
	}
	existed, err := s.repo.DeleteConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !existed {
		return ErrConversationGone
	}
	return nil
}

// ToggleReaction adds the (message, user, emoji) reaction if absent, removes
// it if present. The message is loaded first: a missing message is 404 even
// for non-participants, since the conversation id is only discoverable through
// the message.
func (s *Service) ToggleReaction(ctx context.Context, messageID, userID uint64, emoji string) (added bool, err error) {
	if strings.TrimSpace(emoji) == "" {
		return false, ErrEmptyEmoji
	}

	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, ErrMessageGone
	}

	ok, err := s.IsParticipant(ctx, msg.ConversationID, userID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, ErrNotParticipant
	}

	existing, err := s.repo.FindReaction(ctx, messageID, userID, emoji)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if err := s.repo.DeleteReaction(ctx, existing.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	re := &MessageReaction{MessageID: messageID, UserID: userID, Emoji: emoji}
	if err := s.repo.InsertReaction(ctx, re); err != nil {
		return false, err
	}
	return true, nil
}

// ReactionCounts groups reactions by emoji in first-encounter row order.
func (s *Service) ReactionCounts(ctx context.Context, messageID, userID uint64) ([]ReactionGroup, error) {
	msg, err := s.repo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, ErrMessageGone
	}

	ok, err := s.IsParticipant(ctx, msg.ConversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotParticipant
	}

	rows, err := s.repo.ListReactions(ctx, messageID)
	if err != nil {
		return nil, err
	}

	groups := make([]ReactionGroup, 0)
	index := make(map[string]int)
	for _, row := range rows {
		i, seen := index[row.Emoji]
		if !seen {
			index[row.Emoji] = len(groups)
			groups = append(groups, ReactionGroup{Emoji: row.Emoji})
			i = len(groups) - 1
		}
		groups[i].Count++
		groups[i].UserIDs = append(groups[i].UserIDs, row.UserID)
	}
	return groups, nil
}
