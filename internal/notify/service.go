package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/YFrancis10/MeMantra-sub001/internal/chat"
	"github.com/YFrancis10/MeMantra-sub001/internal/common"
	"github.com/YFrancis10/MeMantra-sub001/internal/models"
	"github.com/YFrancis10/MeMantra-sub001/internal/pkg/logger"
)

var (
	ErrNoToken      = errors.New("no push token registered")
	ErrInvalidToken = errors.New("invalid push token")
	ErrNoQueue      = errors.New("push queue unavailable")
)

// Publisher enqueues a push job id for the delivery worker.
// Satisfied by rabbitmq.Publisher.
type Publisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Service struct {
	repo *Repo
	expo *ExpoClient
	pub  Publisher
	log  *logger.Logger
}

func NewService(repo *Repo, expo *ExpoClient, pub Publisher, log *logger.Logger) *Service {
	return &Service{repo: repo, expo: expo, pub: pub, log: log}
}

// NewMessage implements chat.Notifier: record a push job for the message
// recipient and hand it to the queue.
func (s *Service) NewMessage(ctx context.Context, recipientID uint64, sender *models.User, msg *chat.Message) error {
	if s.pub == nil {
		return ErrNoQueue
	}

	payload, err := json.Marshal(map[string]any{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
	})
	if err != nil {
		return err
	}

	jobID, err := common.NewULID()
	if err != nil {
		return err
	}

	job := &PushJob{
		ID:     jobID,
		UserID: recipientID,
		Title:  sender.Username,
		Body:   msg.Content,
		Data:   string(payload),
		Status: JobQueued,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return err
	}

	if err := s.pub.PublishJob(ctx, job.ID); err != nil {
		_ = s.repo.MarkJobFailed(ctx, job.ID, err.Error())
		return err
	}
	return nil
}

// HandleJob is run by the delivery worker for one queued job.
func (s *Service) HandleJob(ctx context.Context, jobID string) error {
	_ = s.repo.UpdateJobStatusRunning(ctx, jobID)

	job, err := s.repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	user, err := s.repo.GetUser(ctx, job.UserID)
	if err != nil {
		return err
	}
	if user == nil || user.PushToken == "" {
		// recipient gone or has no device; nothing to deliver
		_ = s.repo.MarkJobFailed(ctx, jobID, ErrNoToken.Error())
		return nil
	}
	if !IsValidPushToken(user.PushToken) {
		_ = s.repo.MarkJobFailed(ctx, jobID, ErrInvalidToken.Error())
		return nil
	}

	var data map[string]any
	if job.Data != "" {
		_ = json.Unmarshal([]byte(job.Data), &data)
	}

	_, err = s.expo.SendOne(ctx, PushMessage{
		To:       user.PushToken,
		Title:    job.Title,
		Body:     job.Body,
		Data:     data,
		Sound:    "default",
		Priority: "high",
	})
	if err != nil {
		_ = s.repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	return s.repo.MarkJobSucceeded(ctx, jobID)
}

// SendToUser delivers a push to one user's registered device, synchronously.
func (s *Service) SendToUser(ctx context.Context, userID uint64, title, body string) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.PushToken == "" {
		return ErrNoToken
	}
	if !IsValidPushToken(user.PushToken) {
		return ErrInvalidToken
	}
	_, err = s.expo.SendOne(ctx, PushMessage{
		To:       user.PushToken,
		Title:    title,
		Body:     body,
		Sound:    "default",
		Priority: "high",
	})
	return err
}

// expo caps a single request at 100 messages
const broadcastChunk = 100

// Broadcast fans the notification out to every user with a device token and
// reports per-recipient counts. One bad token never fails the batch.
func (s *Service) Broadcast(ctx context.Context, title, body string) (sent, failed int, err error) {
	targets, err := s.repo.ListPushTargets(ctx)
	if err != nil {
		return 0, 0, err
	}

	var batch []PushMessage
	for _, u := range targets {
		if !IsValidPushToken(u.PushToken) {
			failed++
			continue
		}
		batch = append(batch, PushMessage{
			To:       u.PushToken,
			Title:    title,
			Body:     body,
			Sound:    "default",
			Priority: "high",
		})
	}

	for start := 0; start < len(batch); start += broadcastChunk {
		end := start + broadcastChunk
		if end > len(batch) {
			end = len(batch)
		}
		chunk := batch[start:end]

		tickets, err := s.expo.Send(ctx, chunk)
		if err != nil {
			if s.log != nil {
				s.log.Warn("broadcast chunk failed", "size", len(chunk), "err", err)
			}
			failed += len(chunk)
			continue
		}
		for _, t := range tickets {
			if t.Status == "ok" {
				sent++
			} else {
				failed++
			}
		}
	}
	return sent, failed, nil
}
