package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

type Feedback interface {
	ExistsForApplication(ctx context.Context, applicationID uuid.UUID) (bool, error)
}

type FeedbackStore struct {
	db *gorm.DB
}

// Make sure we conform to Feedback interface
var _ Feedback = (*FeedbackStore)(nil)

func NewFeedbackStore(db *gorm.DB) Feedback {
	return &FeedbackStore{db: db}
}

func (f *FeedbackStore) ExistsForApplication(ctx context.Context, applicationID uuid.UUID) (bool, error) {
	var count int64
	result := f.getDB(ctx).Model(&model.Feedback{}).
		Where("application_id = ?", applicationID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (f *FeedbackStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return f.db
}
