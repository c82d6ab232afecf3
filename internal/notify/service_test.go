package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/YFrancis10/MeMantra-sub001/internal/chat"
	"github.com/YFrancis10/MeMantra-sub001/internal/models"
)

type recordingPublisher struct {
	published []string
	err       error
}

func (p *recordingPublisher) PublishJob(ctx context.Context, jobID string) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, jobID)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &PushJob{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, token string) *models.User {
	t.Helper()
	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		AuthProvider: models.ProviderLocal,
		PushToken:    token,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return &u
}

func expoStub(t *testing.T, handler http.HandlerFunc) *ExpoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewExpoClient(srv.URL)
}

func okExpo(t *testing.T) *ExpoClient {
	return expoStub(t, func(w http.ResponseWriter, r *http.Request) {
		var msgs []PushMessage
		json.NewDecoder(r.Body).Decode(&msgs)
		tickets := make([]PushTicket, len(msgs))
		for i := range msgs {
			tickets[i] = PushTicket{Status: "ok", ID: fmt.Sprintf("t%d", i)}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	})
}

func TestNewMessage_CreatesAndPublishesJob(t *testing.T) {
	db := openTestDB(t)
	pub := &recordingPublisher{}
	svc := NewService(NewRepo(db), okExpo(t), pub, nil)

	sender := seedUser(t, db, "alice", "")
	recipient := seedUser(t, db, "bob", "ExponentPushToken[bob]")

	msg := &chat.Message{ID: 7, ConversationID: 3, SenderID: sender.ID, Content: "hi"}
	if err := svc.NewMessage(context.Background(), recipient.ID, sender, msg); err != nil {
		t.Fatalf("new message: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published job, got %d", len(pub.published))
	}

	job, err := NewRepo(db).GetJobByID(context.Background(), pub.published[0])
	if err != nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != JobQueued || job.UserID != recipient.ID || job.Title != "alice" || job.Body != "hi" {
		t.Fatalf("unexpected job: %+v", job)
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(job.Data), &data); err != nil {
		t.Fatalf("job data: %v", err)
	}
	if data["conversation_id"] != float64(3) || data["message_id"] != float64(7) {
		t.Fatalf("unexpected payload: %v", data)
	}
}

func TestNewMessage_PublishFailureMarksJobFailed(t *testing.T) {
	db := openTestDB(t)
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(NewRepo(db), okExpo(t), pub, nil)

	sender := seedUser(t, db, "alice", "")
	recipient := seedUser(t, db, "bob", "ExponentPushToken[bob]")

	msg := &chat.Message{ID: 1, ConversationID: 1, SenderID: sender.ID, Content: "hi"}
	if err := svc.NewMessage(context.Background(), recipient.ID, sender, msg); err == nil {
		t.Fatalf("expected publish error")
	}

	var job PushJob
	if err := db.First(&job).Error; err != nil {
		t.Fatalf("load job: %v", err)
	}
	if job.Status != JobFailed {
		t.Fatalf("expected failed job, got %s", job.Status)
	}
}

func TestHandleJob_DeliversAndSucceeds(t *testing.T) {
	db := openTestDB(t)
	var got PushMessage
	expo := expoStub(t, func(w http.ResponseWriter, r *http.Request) {
		var msgs []PushMessage
		json.NewDecoder(r.Body).Decode(&msgs)
		got = msgs[0]
		json.NewEncoder(w).Encode(map[string]any{"data": []PushTicket{{Status: "ok"}}})
	})
	svc := NewService(NewRepo(db), expo, nil, nil)

	user := seedUser(t, db, "bob", "ExponentPushToken[bob]")
	job := PushJob{ID: "01JOB", UserID: user.ID, Title: "alice", Body: "hi", Status: JobQueued}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}

	if err := svc.HandleJob(context.Background(), job.ID); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got.To != "ExponentPushToken[bob]" || got.Title != "alice" || got.Body != "hi" {
		t.Fatalf("unexpected push: %+v", got)
	}

	var after PushJob
	if err := db.First(&after, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != JobSucceeded {
		t.Fatalf("expected succeeded, got %s", after.Status)
	}
}

func TestHandleJob_NoTokenFailsWithoutRequeue(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db), okExpo(t), nil, nil)

	user := seedUser(t, db, "bob", "")
	job := PushJob{ID: "01JOB", UserID: user.ID, Title: "t", Body: "b", Status: JobQueued}
	if err := db.Create(&job).Error; err != nil {
		t.Fatalf("seed job: %v", err)
	}

	// nil error keeps the message out of the retry queue
	if err := svc.HandleJob(context.Background(), job.ID); err != nil {
		t.Fatalf("handle: %v", err)
	}

	var after PushJob
	if err := db.First(&after, "id = ?", job.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if after.Status != JobFailed || after.Error == nil || *after.Error != ErrNoToken.Error() {
		t.Fatalf("unexpected job state: %+v", after)
	}
}

func TestSendToUser_TokenChecks(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db), okExpo(t), nil, nil)
	ctx := context.Background()

	none := seedUser(t, db, "none", "")
	bad := seedUser(t, db, "bad", "not-a-token")
	good := seedUser(t, db, "good", "ExponentPushToken[good]")

	if err := svc.SendToUser(ctx, none.ID, "t", "b"); err != ErrNoToken {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
	if err := svc.SendToUser(ctx, bad.ID, "t", "b"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := svc.SendToUser(ctx, good.ID, "t", "b"); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestBroadcast_CountsPartialFailures(t *testing.T) {
	db := openTestDB(t)
	expo := expoStub(t, func(w http.ResponseWriter, r *http.Request) {
		var msgs []PushMessage
		json.NewDecoder(r.Body).Decode(&msgs)
		tickets := make([]PushTicket, 0, len(msgs))
		for _, m := range msgs {
			if m.To == "ExponentPushToken[dead]" {
				tickets = append(tickets, PushTicket{Status: "error", Message: "DeviceNotRegistered"})
				continue
			}
			tickets = append(tickets, PushTicket{Status: "ok"})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	})
	svc := NewService(NewRepo(db), expo, nil, nil)

	seedUser(t, db, "alive1", "ExponentPushToken[a1]")
	seedUser(t, db, "alive2", "ExponentPushToken[a2]")
	seedUser(t, db, "dead", "ExponentPushToken[dead]")
	seedUser(t, db, "garbled", "junk-token")
	seedUser(t, db, "nodevice", "")

	sent, failed, err := svc.Broadcast(context.Background(), "hello", "world")
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if sent != 2 {
		t.Fatalf("expected 2 sent, got %d", sent)
	}
	// dead device plus the locally rejected garbled token
	if failed != 2 {
		t.Fatalf("expected 2 failed, got %d", failed)
	}
}
