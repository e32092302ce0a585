package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Notification interface {
	List(ctx context.Context, filter *NotificationQueryFilter, sort SortOrder) (model.ScheduledNotificationList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ScheduledNotification, error)
	CreateIfAbsent(ctx context.Context, notification model.ScheduledNotification) (*model.ScheduledNotification, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
}

type NotificationStore struct {
	db *gorm.DB
}

// Make sure we conform to Notification interface
var _ Notification = (*NotificationStore)(nil)

func NewNotificationStore(db *gorm.DB) Notification {
	return &NotificationStore{db: db}
}

func (n *NotificationStore) List(ctx context.Context, filter *NotificationQueryFilter, sort SortOrder) (model.ScheduledNotificationList, error) {
	var notifications model.ScheduledNotificationList
	tx := n.getDB(ctx).Model(&notifications)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	switch sort {
	case SortByPriorityThenDue:
		tx = tx.Order(priorityOrderExpr).Order("scheduled_for")
	case SortByCreatedTime:
		tx = tx.Order("created_at")
	}

	if result := tx.Find(&notifications); result.Error != nil {
		return nil, result.Error
	}
	return notifications, nil
}

func (n *NotificationStore) Get(ctx context.Context, id uuid.UUID) (*model.ScheduledNotification, error) {
	var notification model.ScheduledNotification
	result := n.getDB(ctx).First(&notification, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &notification, nil
}

// CreateIfAbsent inserts the notification unless an unsent row already exists
// for the same (recipient, category, subject, window) tuple. The read and the
// insert must share a transaction; the partial unique index notifications_dedup
// catches the remaining window between concurrent invocations, surfacing as
// ErrDuplicateKey.
func (n *NotificationStore) CreateIfAbsent(ctx context.Context, notification model.ScheduledNotification) (*model.ScheduledNotification, error) {
	db := n.getDB(ctx)

	var existing int64
	result := db.Model(&model.ScheduledNotification{}).
		Where("recipient_id = ? AND category = ? AND subject_id = ? AND trigger_window = ? AND sent_at IS NULL",
			notification.RecipientID, notification.Category, notification.SubjectID, notification.TriggerWindow).
		Count(&existing)
	if result.Error != nil {
		return nil, result.Error
	}
	if existing > 0 {
		return nil, ErrDuplicateKey
	}

	result = db.Clauses(clause.Returning{}).Create(&notification)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &notification, nil
}

func (n *NotificationStore) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	result := n.getDB(ctx).Model(&model.ScheduledNotification{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", sentAt)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (n *NotificationStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return n.db
}
