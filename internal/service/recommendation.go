package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/delivery"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/internal/store/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultRecommendLimit = 10

type RecommendationService struct {
	store     store.Store
	scheduler *SchedulerService
	producer  *delivery.Producer

	matcherCfg         MatcherConfig
	recencyWindow      time.Duration
	notifyThreshold    int
	immediateThreshold int
	parallelism        int
	batchCadence       time.Duration
	nowFn              func() time.Time
}

func NewRecommendationService(store store.Store, scheduler *SchedulerService, producer *delivery.Producer, cfg *config.Config) *RecommendationService {
	return &RecommendationService{
		store:              store,
		scheduler:          scheduler,
		producer:           producer,
		matcherCfg:         NewMatcherConfig(cfg),
		recencyWindow:      time.Duration(cfg.Engine.RecencyWindowDays) * 24 * time.Hour,
		notifyThreshold:    cfg.Engine.NotifyThreshold,
		immediateThreshold: cfg.Engine.ImmediateThreshold,
		parallelism:        cfg.Engine.FanOutParallelism,
		batchCadence:       cfg.Engine.RunInterval,
		nowFn:              time.Now,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *RecommendationService) WithClock(now func() time.Time) *RecommendationService {
	s.nowFn = now
	return s
}

// Recommend ranks the candidate's eligible opportunities. Zero scores are
// filtered, the sort is stable descending on score and the result is
// truncated to limit.
func (s *RecommendationService) Recommend(ctx context.Context, candidateID uuid.UUID, limit int) ([]MatchResult, error) {
	now := s.nowFn()
	if limit <= 0 {
		limit = defaultRecommendLimit
	}

	candidate, err := s.store.Candidate().Get(ctx, candidateID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrCandidateNotFound(candidateID)
		}
		return nil, err
	}

	opportunities, err := s.store.Opportunity().List(ctx,
		store.NewOpportunityQueryFilter().ByActive(true).ByVerified(true))
	if err != nil {
		return nil, err
	}

	results := make([]MatchResult, 0, len(opportunities))
	byID := make(map[uuid.UUID]model.Opportunity, len(opportunities))
	for _, opportunity := range opportunities {
		result := Score(*candidate, opportunity, s.matcherCfg)
		if result.Score == 0 {
			continue
		}
		result.New = now.Sub(opportunity.CreatedAt) <= s.recencyWindow
		results = append(results, result)
		byID[opportunity.ID] = opportunity
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}

	if err := s.attachTrending(ctx, now, results, byID); err != nil {
		// trending is a display signal only
		zap.S().Named("recommendation").Warnw("failed to compute trending signal", "error", err)
	}

	return results, nil
}

func (s *RecommendationService) attachTrending(ctx context.Context, now time.Time, results []MatchResult, byID map[uuid.UUID]model.Opportunity) error {
	if len(results) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.OpportunityID)
	}

	counts, err := s.store.Application().CountByOpportunity(ctx, ids)
	if err != nil {
		return err
	}

	for i := range results {
		opportunity := byID[results[i].OpportunityID]
		results[i].Trending = float64(counts[results[i].OpportunityID]) / opportunity.AgeInDays(now)
	}
	return nil
}

type FanOutReport struct {
	Matched  int `json:"matched"`
	Notified int `json:"notified"`
	Failed   int `json:"failed"`
}

// FanOut scores every eligible candidate against a newly ingested
// opportunity and schedules recommendation notifications for scores at or
// above the threshold. Per-candidate failures are isolated: they are counted
// and logged but never abort the rest of the pool.
func (s *RecommendationService) FanOut(ctx context.Context, opportunityID uuid.UUID) (FanOutReport, error) {
	now := s.nowFn()
	report := FanOutReport{}

	opportunity, err := s.store.Opportunity().Get(ctx, opportunityID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return report, NewErrOpportunityNotFound(opportunityID)
		}
		return report, err
	}
	if !opportunity.Active {
		return report, nil
	}

	candidates, err := s.store.Candidate().List(ctx,
		store.NewCandidateQueryFilter().ByEligibilityGroups(opportunity.EligibilityGroups))
	if err != nil {
		return report, err
	}

	var matched, notified, failed atomic.Int64

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	for _, candidate := range candidates {
		g.Go(func() error {
			result := Score(candidate, *opportunity, s.matcherCfg)
			if result.Score == 0 {
				return nil
			}
			matched.Add(1)

			if result.Score < s.notifyThreshold {
				return nil
			}

			scheduledFor := now.Add(s.batchCadence)
			if result.Score >= s.immediateThreshold {
				scheduledFor = now
			}

			if err := s.notifyMatch(groupCtx, candidate, *opportunity, result, scheduledFor); err != nil {
				failed.Add(1)
				zap.S().Named("recommendation").Warnw("match notification failed",
					"candidate", candidate.ID, "opportunity", opportunity.ID, "error", err)
				return nil
			}
			notified.Add(1)
			return nil
		})
	}

	// workers only report through the counters
	_ = g.Wait()

	report.Matched = int(matched.Load())
	report.Notified = int(notified.Load())
	report.Failed = int(failed.Load())
	return report, nil
}

func (s *RecommendationService) notifyMatch(ctx context.Context, candidate model.Candidate, opportunity model.Opportunity, result MatchResult, scheduledFor time.Time) error {
	event := delivery.MatchEvent{
		CandidateID:   candidate.ID.String(),
		OpportunityID: opportunity.ID.String(),
		Score:         result.Score,
		Reasons:       result.Reasons,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	priority := model.PriorityMedium
	if result.Score >= s.immediateThreshold {
		priority = model.PriorityHigh
	}

	if _, err := s.scheduler.Schedule(ctx, model.ScheduledNotification{
		RecipientID:   candidate.ID,
		Category:      model.CategoryGeneral,
		SubjectID:     opportunity.ID,
		TriggerWindow: "recommendation",
		Payload:       payload,
		ScheduledFor:  scheduledFor,
		Priority:      priority,
	}); err != nil {
		return err
	}

	if s.producer != nil && priority == model.PriorityHigh {
		if err := s.producer.Write(ctx, delivery.MatchMessageKind, event); err != nil {
			zap.S().Named("recommendation").Warnw("failed to emit match event", "error", err)
		}
	}
	return nil
}
