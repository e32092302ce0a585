package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

type Reviewer interface {
	List(ctx context.Context, filter *ReviewerQueryFilter) (model.ReviewerList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Reviewer, error)
	Stats(ctx context.Context, reviewerID uuid.UUID) (*model.ReviewerStats, error)
	RecordDecision(ctx context.Context, reviewerID uuid.UUID, approved bool, responseSeconds int64) error
}

type ReviewerStore struct {
	db *gorm.DB
}

// Make sure we conform to Reviewer interface
var _ Reviewer = (*ReviewerStore)(nil)

func NewReviewerStore(db *gorm.DB) Reviewer {
	return &ReviewerStore{db: db}
}

func (r *ReviewerStore) List(ctx context.Context, filter *ReviewerQueryFilter) (model.ReviewerList, error) {
	var reviewers model.ReviewerList
	tx := r.getDB(ctx).Model(&reviewers).Order("created_at")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&reviewers); result.Error != nil {
		return nil, result.Error
	}
	return reviewers, nil
}

func (r *ReviewerStore) Get(ctx context.Context, id uuid.UUID) (*model.Reviewer, error) {
	var reviewer model.Reviewer
	result := r.getDB(ctx).First(&reviewer, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &reviewer, nil
}

func (r *ReviewerStore) Stats(ctx context.Context, reviewerID uuid.UUID) (*model.ReviewerStats, error) {
	var stats model.ReviewerStats
	result := r.getDB(ctx).First(&stats, "reviewer_id = ?", reviewerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &stats, nil
}

// RecordDecision accumulates the observational per-reviewer counters.
func (r *ReviewerStore) RecordDecision(ctx context.Context, reviewerID uuid.UUID, approved bool, responseSeconds int64) error {
	db := r.getDB(ctx)

	var stats model.ReviewerStats
	err := db.First(&stats, "reviewer_id = ?", reviewerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = model.ReviewerStats{ReviewerID: reviewerID}
		if err := db.Create(&stats).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	stats.Decided++
	if approved {
		stats.Approved++
	}
	stats.ResponseSeconds += responseSeconds

	return db.Model(&model.ReviewerStats{}).
		Where("reviewer_id = ?", reviewerID).
		Updates(map[string]any{
			"decided":          stats.Decided,
			"approved":         stats.Approved,
			"response_seconds": stats.ResponseSeconds,
		}).Error
}

func (r *ReviewerStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}
