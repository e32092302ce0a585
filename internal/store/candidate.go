package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

type Candidate interface {
	List(ctx context.Context, filter *CandidateQueryFilter) (model.CandidateList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error)
}

type CandidateStore struct {
	db *gorm.DB
}

// Make sure we conform to Candidate interface
var _ Candidate = (*CandidateStore)(nil)

func NewCandidateStore(db *gorm.DB) Candidate {
	return &CandidateStore{db: db}
}

func (c *CandidateStore) List(ctx context.Context, filter *CandidateQueryFilter) (model.CandidateList, error) {
	var candidates model.CandidateList
	tx := c.getDB(ctx).Model(&candidates).Order("created_at")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&candidates); result.Error != nil {
		return nil, result.Error
	}
	return candidates, nil
}

func (c *CandidateStore) Get(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var candidate model.Candidate
	result := c.getDB(ctx).First(&candidate, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &candidate, nil
}

func (c *CandidateStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return c.db
}
