package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

type Interview interface {
	List(ctx context.Context, filter *InterviewQueryFilter) (model.InterviewList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Interview, error)
}

type InterviewStore struct {
	db *gorm.DB
}

// Make sure we conform to Interview interface
var _ Interview = (*InterviewStore)(nil)

func NewInterviewStore(db *gorm.DB) Interview {
	return &InterviewStore{db: db}
}

func (i *InterviewStore) List(ctx context.Context, filter *InterviewQueryFilter) (model.InterviewList, error) {
	var interviews model.InterviewList
	tx := i.getDB(ctx).Model(&interviews).Order("scheduled_at")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&interviews); result.Error != nil {
		return nil, result.Error
	}
	return interviews, nil
}

func (i *InterviewStore) Get(ctx context.Context, id uuid.UUID) (*model.Interview, error) {
	var interview model.Interview
	result := i.getDB(ctx).First(&interview, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &interview, nil
}

func (i *InterviewStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return i.db
}
