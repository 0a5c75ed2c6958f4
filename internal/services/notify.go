package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/huangang/teamboard/backend/internal/config"
	"github.com/huangang/teamboard/backend/internal/models"
	"github.com/huangang/teamboard/backend/pkg/logger"
)

const (
	TaskTypeInviteNotice = "invite:notify"
)

// InviteNotice carries the data needed to notify a user that they were
// invited to a project.
type InviteNotice struct {
	MembershipID uint   `json:"membership_id"`
	ProjectID    uint   `json:"project_id"`
	InviterID    uint   `json:"inviter_id"`
	InviteeID    uint   `json:"invitee_id"`
	Permission   string `json:"permission"`
}

// NotifyQueue defines the interface for invite notification delivery.
type NotifyQueue interface {
	// Enqueue adds a notice to the queue
	Enqueue(notice *InviteNotice) error
	// IsAsync returns true if the queue processes notices asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global notify queue instance
var (
	globalNotifyQueue NotifyQueue
	notifyQueueOnce   sync.Once
)

// InitNotifyQueue initializes the global notify queue based on config
func InitNotifyQueue(cfg *config.Config) NotifyQueue {
	notifyQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncNotifyQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[NotifyQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalNotifyQueue = NewSyncNotifyQueue()
			} else {
				logger.Infof("[NotifyQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalNotifyQueue = queue
			}
		} else {
			logger.Infof("[NotifyQueue] Sync queue initialized (Redis disabled)")
			globalNotifyQueue = NewSyncNotifyQueue()
		}
	})
	return globalNotifyQueue
}

// GetNotifyQueue returns the global notify queue instance
func GetNotifyQueue() NotifyQueue {
	return globalNotifyQueue
}

// AsyncNotifyQueue implements NotifyQueue using asynq (Redis-based)
type AsyncNotifyQueue struct {
	client *asynq.Client
}

// NewAsyncNotifyQueue creates a new Redis-based async queue
func NewAsyncNotifyQueue(cfg *config.RedisConfig) (*AsyncNotifyQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Verify the connection before committing to async mode
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncNotifyQueue{client: client}, nil
}

// Enqueue adds an invite notice to the async queue
func (q *AsyncNotifyQueue) Enqueue(notice *InviteNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypeInviteNotice, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[NotifyQueue] Notice enqueued: id=%s, queue=%s", info.ID, info.Queue)
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncNotifyQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncNotifyQueue) Close() error {
	return q.client.Close()
}

// SyncNotifyQueue implements NotifyQueue with in-process delivery (no Redis)
type SyncNotifyQueue struct {
	processor func(context.Context, *InviteNotice) error
}

// NewSyncNotifyQueue creates a new synchronous queue
func NewSyncNotifyQueue() *SyncNotifyQueue {
	return &SyncNotifyQueue{}
}

// SetProcessor sets the function to deliver notices synchronously
func (q *SyncNotifyQueue) SetProcessor(processor func(context.Context, *InviteNotice) error) {
	q.processor = processor
}

// Enqueue delivers the notice immediately in a goroutine so the request
// that triggered it is not blocked
func (q *SyncNotifyQueue) Enqueue(notice *InviteNotice) error {
	if q.processor == nil {
		logger.Infof("[SyncNotifyQueue] Warning: no processor set, notice will be dropped")
		return nil
	}

	go func() {
		ctx := context.Background()
		if err := q.processor(ctx, notice); err != nil {
			logger.Infof("[SyncNotifyQueue] Notice delivery failed: %v", err)
		}
	}()

	return nil
}

// IsAsync returns false for sync queue
func (q *SyncNotifyQueue) IsAsync() bool {
	return false
}

// Close is a no-op for sync queue
func (q *SyncNotifyQueue) Close() error {
	return nil
}

// NewInviteNoticeProcessor returns the delivery function for invite
// notices. Delivery records the invitation in the system log so it shows
// up in the audit trail; an email or chat integration can be added here.
func NewInviteNoticeProcessor(db *gorm.DB) func(context.Context, *InviteNotice) error {
	return func(ctx context.Context, notice *InviteNotice) error {
		var invitee models.User
		if err := db.First(&invitee, notice.InviteeID).Error; err != nil {
			return err
		}
		var project models.Project
		if err := db.First(&project, notice.ProjectID).Error; err != nil {
			return err
		}

		LogInfo("Memberships", "Invite",
			fmt.Sprintf("%s was invited to project %s", invitee.Username, project.Name),
			&notice.InviterID, "", "", map[string]interface{}{
				"membership_id": notice.MembershipID,
				"project_id":    notice.ProjectID,
				"invitee_id":    notice.InviteeID,
				"permission":    notice.Permission,
			})
		return nil
	}
}
