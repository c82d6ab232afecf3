package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &Conversation{}, &Message{}, &MessageReaction{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) uint64 {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		AuthProvider: models.ProviderLocal,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u.ID
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewService(NewRepo(db), nil), db
}

func TestFindOrCreate_DedupesBothOrders(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, created, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("first find-or-create: %v", err)
	}
	if !created {
		t.Fatalf("expected first call to create")
	}

	again, created, err := svc.FindOrCreate(ctx, bob, alice)
	if err != nil {
		t.Fatalf("reversed find-or-create: %v", err)
	}
	if created {
		t.Fatalf("expected reversed call to find, not create")
	}
	if again.ID != conv.ID {
		t.Fatalf("expected same conversation id, got %d and %d", conv.ID, again.ID)
	}

	var n int64
	if err := db.Model(&Conversation{}).Count(&n).Error; err != nil {
		t.Fatalf("count conversations: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 conversation row, got %d", n)
	}
}

func TestFindOrCreate_RejectsSelf(t *testing.T) {
	svc, db := newTestService(t)
	alice := seedUser(t, db, "alice")

	if _, _, err := svc.FindOrCreate(context.Background(), alice, alice); err != ErrSelfConversation {
		t.Fatalf("expected ErrSelfConversation, got %v", err)
	}
}

func TestSend_InsertsUnreadAndBumpsCounter(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}

	msg, err := svc.Send(ctx, conv.ID, alice, "hi", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.Read {
		t.Fatalf("new message must start unread")
	}

	msgs, err := svc.ListMessages(ctx, conv.ID, bob)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hi" || msgs[0].Read {
		t.Fatalf("unexpected listing: %+v", msgs)
	}

	unread, err := svc.CountUnread(ctx, conv.ID, bob)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 1 {
		t.Fatalf("expected 1 unread for bob, got %d", unread)
	}

	// the sender's own message is never unread for the sender
	unread, err = svc.CountUnread(ctx, conv.ID, alice)
	if err != nil {
		t.Fatalf("count unread: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected 0 unread for alice, got %d", unread)
	}
}

func TestSend_RejectsEmptyContent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	if _, err := svc.Send(ctx, conv.ID, alice, "   ", nil); err != ErrEmptyContent {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Send(ctx, conv.ID, alice, fmt.Sprintf("m%d", i), nil); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	for i := 0; i < 2; i++ {
		if err := svc.MarkRead(ctx, conv.ID, bob); err != nil {
			t.Fatalf("mark read call %d: %v", i, err)
		}
		unread, err := svc.CountUnread(ctx, conv.ID, bob)
		if err != nil {
			t.Fatalf("count unread: %v", err)
		}
		if unread != 0 {
			t.Fatalf("call %d: expected 0 unread, got %d", i, unread)
		}
	}
}

func TestSend_ReplyValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	other, _, err := svc.FindOrCreate(ctx, alice, carol)
	if err != nil {
		t.Fatalf("second conversation: %v", err)
	}

	foreign, err := svc.Send(ctx, other.ID, alice, "elsewhere", nil)
	if err != nil {
		t.Fatalf("send in other conversation: %v", err)
	}

	// reply target in a different conversation
	if _, err := svc.Send(ctx, conv.ID, bob, "re", &foreign.ID); err != ErrReplyWrongThread {
		t.Fatalf("expected ErrReplyWrongThread, got %v", err)
	}

	// reply target that does not exist
	missing := uint64(99999)
	if _, err := svc.Send(ctx, conv.ID, bob, "re", &missing); err != ErrReplyGone {
		t.Fatalf("expected ErrReplyGone, got %v", err)
	}

	// no rows were written by the rejected replies
	var n int64
	if err := db.Model(&Message{}).Where("conversation_id = ?", conv.ID).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if n != 0 {
		t.Fatalf("rejected replies must not create rows, got %d", n)
	}

	// a valid reply goes through
	root, err := svc.Send(ctx, conv.ID, alice, "root", nil)
	if err != nil {
		t.Fatalf("send root: %v", err)
	}
	reply, err := svc.Send(ctx, conv.ID, bob, "answer", &root.ID)
	if err != nil {
		t.Fatalf("send reply: %v", err)
	}
	if reply.ReplyToMessageID == nil || *reply.ReplyToMessageID != root.ID {
		t.Fatalf("reply linkage lost: %+v", reply)
	}
}

func TestToggleReaction_AddsThenRemoves(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	msg, err := svc.Send(ctx, conv.ID, alice, "hi", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	added, err := svc.ToggleReaction(ctx, msg.ID, bob, "👍")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !added {
		t.Fatalf("first toggle must add")
	}

	added, err = svc.ToggleReaction(ctx, msg.ID, bob, "👍")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if added {
		t.Fatalf("second toggle must remove")
	}

	groups, err := svc.ReactionCounts(ctx, msg.ID, bob)
	if err != nil {
		t.Fatalf("reaction counts: %v", err)
	}
	for _, g := range groups {
		if g.Emoji == "👍" && g.Count > 0 {
			t.Fatalf("expected 👍 gone after double toggle, got %+v", g)
		}
	}
}

func TestReactionCounts_GroupsInRowOrder(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	msg, err := svc.Send(ctx, conv.ID, alice, "hi", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	for _, r := range []struct {
		user  uint64
		emoji string
	}{
		{bob, "🔥"},
		{alice, "👍"},
		{alice, "🔥"},
	} {
		if _, err := svc.ToggleReaction(ctx, msg.ID, r.user, r.emoji); err != nil {
			t.Fatalf("toggle %s: %v", r.emoji, err)
		}
	}

	groups, err := svc.ReactionCounts(ctx, msg.ID, alice)
	if err != nil {
		t.Fatalf("reaction counts: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 emoji groups, got %d", len(groups))
	}
	if groups[0].Emoji != "🔥" || groups[0].Count != 2 {
		t.Fatalf("expected 🔥 first with count 2, got %+v", groups[0])
	}
	if groups[1].Emoji != "👍" || groups[1].Count != 1 || groups[1].UserIDs[0] != alice {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
}

func TestParticipantGate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	mallory := seedUser(t, db, "mallory")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	msg, err := svc.Send(ctx, conv.ID, alice, "secret", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := svc.Get(ctx, conv.ID, mallory); err != ErrNotParticipant {
		t.Fatalf("get: expected ErrNotParticipant, got %v", err)
	}
	if _, err := svc.ListMessages(ctx, conv.ID, mallory); err != ErrNotParticipant {
		t.Fatalf("list: expected ErrNotParticipant, got %v", err)
	}
	if _, err := svc.Send(ctx, conv.ID, mallory, "hello", nil); err != ErrNotParticipant {
		t.Fatalf("send: expected ErrNotParticipant, got %v", err)
	}
	if err := svc.MarkRead(ctx, conv.ID, mallory); err != ErrNotParticipant {
		t.Fatalf("mark read: expected ErrNotParticipant, got %v", err)
	}
	if err := svc.Delete(ctx, conv.ID, mallory); err != ErrNotParticipant {
		t.Fatalf("delete: expected ErrNotParticipant, got %v", err)
	}
	if _, err := svc.ToggleReaction(ctx, msg.ID, mallory, "👀"); err != ErrNotParticipant {
		t.Fatalf("reaction: expected ErrNotParticipant, got %v", err)
	}

	// a missing conversation answers false, not an error
	ok, err := svc.IsParticipant(ctx, 424242, alice)
	if err != nil {
		t.Fatalf("is participant: %v", err)
	}
	if ok {
		t.Fatalf("missing conversation must not have participants")
	}
}

func TestReaction_MissingMessageBeatsGate(t *testing.T) {
	svc, db := newTestService(t)
	mallory := seedUser(t, db, "mallory")

	// the conversation id is only discoverable through the message, so a
	// missing message is reported before any participant check
	if _, err := svc.ToggleReaction(context.Background(), 31337, mallory, "👍"); err != ErrMessageGone {
		t.Fatalf("expected ErrMessageGone, got %v", err)
	}
}

func TestDelete_CascadesMessages(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Send(ctx, conv.ID, alice, fmt.Sprintf("m%d", i), nil); err != nil {
			t.Fatalf("send %d: %v", i, err)
		}
	}

	if err := svc.Delete(ctx, conv.ID, bob); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var n int64
	if err := db.Model(&Message{}).Where("conversation_id = ?", conv.ID).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected messages removed with conversation, got %d", n)
	}

	if err := svc.Delete(ctx, conv.ID, bob); err != ErrConversationGone {
		t.Fatalf("re-delete: expected ErrConversationGone, got %v", err)
	}
}

func TestListForUser_EnrichesAndSorts(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	withBob, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create bob: %v", err)
	}
	withCarol, _, err := svc.FindOrCreate(ctx, alice, carol)
	if err != nil {
		t.Fatalf("find-or-create carol: %v", err)
	}

	// make the carol conversation the most recent
	if _, err := svc.Send(ctx, withBob.ID, bob, "old", nil); err != nil {
		t.Fatalf("send bob: %v", err)
	}
	// nudge created_at apart; sqlite timestamps are not monotonic per insert
	if err := db.Model(&Message{}).Where("conversation_id = ?", withBob.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if _, err := svc.Send(ctx, withCarol.ID, carol, "new", nil); err != nil {
		t.Fatalf("send carol: %v", err)
	}

	summaries, err := svc.ListForUser(ctx, alice)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	first, second := summaries[0], summaries[1]
	if first.ID != withCarol.ID {
		t.Fatalf("expected carol conversation first, got %d", first.ID)
	}
	if first.OtherUser.Username != "carol" || second.OtherUser.Username != "bob" {
		t.Fatalf("other users wrong: %q then %q", first.OtherUser.Username, second.OtherUser.Username)
	}
	if first.LastMessage != "new" || second.LastMessage != "old" {
		t.Fatalf("last messages wrong: %q then %q", first.LastMessage, second.LastMessage)
	}
	if first.UnreadCount != 1 || second.UnreadCount != 1 {
		t.Fatalf("unread counts wrong: %d then %d", first.UnreadCount, second.UnreadCount)
	}
}

func TestListForUser_EmptyConversationUsesCreationTime(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}

	summaries, err := svc.ListForUser(ctx, alice)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	s := summaries[0]
	if s.LastMessage != "" {
		t.Fatalf("expected empty last message, got %q", s.LastMessage)
	}
	if !s.LastMessageAt.Equal(conv.CreatedAt) {
		t.Fatalf("expected creation time as activity time")
	}
	if s.UnreadCount != 0 {
		t.Fatalf("expected 0 unread, got %d", s.UnreadCount)
	}
}

func TestSend_TouchesConversation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	conv, _, err := svc.FindOrCreate(ctx, alice, bob)
	if err != nil {
		t.Fatalf("find-or-create: %v", err)
	}

	// backdate, then send; updated_at must move forward
	old := time.Now().Add(-time.Hour)
	if err := db.Model(&Conversation{}).Where("id = ?", conv.ID).
		Update("updated_at", old).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, err := svc.Send(ctx, conv.ID, alice, "bump", nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	var after Conversation
	if err := db.First(&after, conv.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !after.UpdatedAt.After(old.Add(time.Minute)) {
		t.Fatalf("expected updated_at bumped past %v, got %v", old, after.UpdatedAt)
	}
}
