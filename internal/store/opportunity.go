package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
)

type Opportunity interface {
	List(ctx context.Context, filter *OpportunityQueryFilter) (model.OpportunityList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Opportunity, error)
}

type OpportunityStore struct {
	db *gorm.DB
}

// Make sure we conform to Opportunity interface
var _ Opportunity = (*OpportunityStore)(nil)

func NewOpportunityStore(db *gorm.DB) Opportunity {
	return &OpportunityStore{db: db}
}

func (o *OpportunityStore) List(ctx context.Context, filter *OpportunityQueryFilter) (model.OpportunityList, error) {
	var opportunities model.OpportunityList
	tx := o.getDB(ctx).Model(&opportunities).Order("created_at")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&opportunities); result.Error != nil {
		return nil, result.Error
	}
	return opportunities, nil
}

func (o *OpportunityStore) Get(ctx context.Context, id uuid.UUID) (*model.Opportunity, error) {
	var opportunity model.Opportunity
	result := o.getDB(ctx).First(&opportunity, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &opportunity, nil
}

func (o *OpportunityStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return o.db
}
