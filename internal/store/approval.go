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

type Approval interface {
	List(ctx context.Context, filter *ApprovalQueryFilter, sort SortOrder) (model.ApprovalRequestList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error)
	Create(ctx context.Context, request model.ApprovalRequest) (*model.ApprovalRequest, error)
	Decide(ctx context.Context, id uuid.UUID, status model.ApprovalStatus, reviewedAt time.Time, comments string) (*model.ApprovalRequest, error)
	PendingCountByReviewer(ctx context.Context, reviewerIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type ApprovalStore struct {
	db *gorm.DB
}

// Make sure we conform to Approval interface
var _ Approval = (*ApprovalStore)(nil)

func NewApprovalStore(db *gorm.DB) Approval {
	return &ApprovalStore{db: db}
}

func (a *ApprovalStore) List(ctx context.Context, filter *ApprovalQueryFilter, sort SortOrder) (model.ApprovalRequestList, error) {
	var requests model.ApprovalRequestList
	tx := a.getDB(ctx).Model(&requests)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	switch sort {
	case SortByPriorityThenSubmitted:
		tx = tx.Order(priorityOrderExpr).Order("submitted_at")
	case SortBySubmittedTime:
		tx = tx.Order("submitted_at")
	case SortByCreatedTime:
		tx = tx.Order("created_at")
	}

	if result := tx.Find(&requests); result.Error != nil {
		return nil, result.Error
	}
	return requests, nil
}

func (a *ApprovalStore) Get(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	var request model.ApprovalRequest
	result := a.getDB(ctx).First(&request, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &request, nil
}

func (a *ApprovalStore) Create(ctx context.Context, request model.ApprovalRequest) (*model.ApprovalRequest, error) {
	result := a.getDB(ctx).Clauses(clause.Returning{}).Create(&request)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &request, nil
}

// Decide flips a PENDING request to its final status. The WHERE guard on
// status makes the update a compare-and-set: a request already decided by a
// concurrent invocation yields ErrRecordNotFound instead of a double decide.
func (a *ApprovalStore) Decide(ctx context.Context, id uuid.UUID, status model.ApprovalStatus, reviewedAt time.Time, comments string) (*model.ApprovalRequest, error) {
	request := model.ApprovalRequest{ID: id}
	result := a.getDB(ctx).Model(&request).
		Clauses(clause.Returning{}).
		Where("status = ?", model.ApprovalStatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_at": reviewedAt,
			"comments":    comments,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return &request, nil
}

func (a *ApprovalStore) PendingCountByReviewer(ctx context.Context, reviewerIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		ReviewerID uuid.UUID
		Total      int64
	}
	var rows []row

	result := a.getDB(ctx).Model(&model.ApprovalRequest{}).
		Select("reviewer_id, count(*) as total").
		Where("reviewer_id IN ? AND status = ?", reviewerIDs, model.ApprovalStatusPending).
		Group("reviewer_id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[uuid.UUID]int64, len(reviewerIDs))
	for _, id := range reviewerIDs {
		counts[id] = 0
	}
	for _, r := range rows {
		counts[r.ReviewerID] = r.Total
	}
	return counts, nil
}

func (a *ApprovalStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return a.db
}
