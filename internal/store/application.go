package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Application interface {
	List(ctx context.Context, filter *ApplicationQueryFilter) (model.ApplicationList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Application, error)
	Create(ctx context.Context, application model.Application) (*model.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus) (*model.Application, error)
	CountByOpportunity(ctx context.Context, opportunityIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

type ApplicationStore struct {
	db *gorm.DB
}

// Make sure we conform to Application interface
var _ Application = (*ApplicationStore)(nil)

func NewApplicationStore(db *gorm.DB) Application {
	return &ApplicationStore{db: db}
}

func (a *ApplicationStore) List(ctx context.Context, filter *ApplicationQueryFilter) (model.ApplicationList, error) {
	var applications model.ApplicationList
	tx := a.getDB(ctx).Model(&applications).
		Preload("Opportunity").
		Preload("Candidate").
		Order("submitted_at")

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if result := tx.Find(&applications); result.Error != nil {
		return nil, result.Error
	}
	return applications, nil
}

func (a *ApplicationStore) Get(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var application model.Application
	result := a.getDB(ctx).
		Preload("Opportunity").
		Preload("Candidate").
		First(&application, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &application, nil
}

func (a *ApplicationStore) Create(ctx context.Context, application model.Application) (*model.Application, error) {
	result := a.getDB(ctx).Clauses(clause.Returning{}).Create(&application)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &application, nil
}

// UpdateStatus writes the status column only. Transition validation belongs
// to the caller, which is expected to run inside a transaction.
func (a *ApplicationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus) (*model.Application, error) {
	application := model.Application{ID: id}
	result := a.getDB(ctx).Model(&application).
		Clauses(clause.Returning{}).
		Update("status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return &application, nil
}

func (a *ApplicationStore) CountByOpportunity(ctx context.Context, opportunityIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	type row struct {
		OpportunityID uuid.UUID
		Total         int64
	}
	var rows []row

	result := a.getDB(ctx).Model(&model.Application{}).
		Select("opportunity_id, count(*) as total").
		Where("opportunity_id IN ?", opportunityIDs).
		Group("opportunity_id").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		counts[r.OpportunityID] = r.Total
	}
	return counts, nil
}

func (a *ApplicationStore) getDB(ctx context.Context) *gorm.DB {
	if tx := FromContext(ctx); tx != nil {
		return tx
	}
	return a.db
}
