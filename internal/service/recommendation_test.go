package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/config"
	"github.com/internmatch/placement-engine/internal/service"
	"github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("recommendation service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		cfg    *config.Config
		now    time.Time
	)

	newService := func() *service.RecommendationService {
		scheduler := service.NewSchedulerService(s, newTestWriter(), cfg)
		return service.NewRecommendationService(s, scheduler, nil, cfg).
			WithClock(func() time.Time { return now })
	}

	BeforeAll(func() {
		cfg = config.NewDefault()
		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db
		_ = s.InitialMigration()

		now = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from scheduled_notifications;")
		gormdb.Exec("DELETE from applications;")
		gormdb.Exec("DELETE from opportunities;")
		gormdb.Exec("DELETE from candidates;")
	})

	Context("recommend", func() {
		It("ranks eligible opportunities and filters zero scores", func() {
			candidateID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCandidateStm, candidateID.String(), "alice", "university", `["go","postgres"]`, 5))
			Expect(tx.Error).To(BeNil())

			strong := uuid.New()
			weak := uuid.New()
			ineligible := uuid.New()
			deadline := now.AddDate(0, 1, 0)

			tx = gormdb.Exec(fmt.Sprintf(insertOpportunityStm, strong.String(), "backend internship",
				`["university"]`, `["go","postgres"]`, "internship", true, true, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertOpportunityStm, weak.String(), "design internship",
				`["university"]`, `["figma"]`, "internship", true, true, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -30))))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertOpportunityStm, ineligible.String(), "graduate placement",
				`["graduate"]`, `["go"]`, "placement", true, true, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())

			results, err := newService().Recommend(context.TODO(), candidateID, 10)
			Expect(err).To(BeNil())
			Expect(results).To(HaveLen(2))

			Expect(results[0].OpportunityID).To(Equal(strong))
			Expect(results[0].Score > results[1].Score).To(BeTrue())
			Expect(results[0].New).To(BeTrue())
			Expect(results[1].OpportunityID).To(Equal(weak))
			Expect(results[1].New).To(BeFalse())
		})

		It("ignores unverified and inactive opportunities", func() {
			candidateID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertCandidateStm, candidateID.String(), "bob", "university", `["go"]`, 2))
			Expect(tx.Error).To(BeNil())

			deadline := now.AddDate(0, 1, 0)
			tx = gormdb.Exec(fmt.Sprintf(insertOpportunityStm, uuid.NewString(), "unverified",
				`["university"]`, `["go"]`, "internship", true, false, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertOpportunityStm, uuid.NewString(), "inactive",
				`["university"]`, `["go"]`, "internship", false, true, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())

			results, err := newService().Recommend(context.TODO(), candidateID, 10)
			Expect(err).To(BeNil())
			Expect(results).To(BeEmpty())
		})

		It("fails for an unknown candidate", func() {
			_, err := newService().Recommend(context.TODO(), uuid.New(), 10)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrResourceNotFound{}))
		})
	})

	Context("fan out", func() {
		It("notifies strong matches only", func() {
			opportunityID := uuid.New()
			deadline := now.AddDate(0, 1, 0)
			tx := gormdb.Exec(fmt.Sprintf(insertOpportunityStm, opportunityID.String(), "backend internship",
				`["university"]`, `["go","postgres"]`, "internship", true, true, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())

			strong := uuid.New()
			weak := uuid.New()
			tx = gormdb.Exec(fmt.Sprintf(insertCandidateStm, strong.String(), "alice", "university", `["go","postgres"]`, 5))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCandidateStm, weak.String(), "bob", "university", `["figma"]`, 0))
			Expect(tx.Error).To(BeNil())

			report, err := newService().FanOut(context.TODO(), opportunityID)
			Expect(err).To(BeNil())
			Expect(report.Matched).To(Equal(2))
			Expect(report.Notified).To(Equal(1))
			Expect(report.Failed).To(Equal(0))

			notifications, err := s.Notification().List(context.TODO(),
				store.NewNotificationQueryFilter().ByRecipientID(strong).ByCategory(model.CategoryGeneral),
				store.Unsorted)
			Expect(err).To(BeNil())
			Expect(notifications).To(HaveLen(1))
			// a 90+ score is delivered on the next flush, not the next batch
			Expect(notifications[0].ScheduledFor.UTC()).To(Equal(now))
			Expect(notifications[0].Priority).To(Equal(model.PriorityHigh))
		})

		It("returns an empty report for an inactive opportunity", func() {
			opportunityID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertOpportunityStm, opportunityID.String(), "closed internship",
				`["university"]`, `["go"]`, "internship", false, true, sqlTime(now.AddDate(0, 1, 0)), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())

			report, err := newService().FanOut(context.TODO(), opportunityID)
			Expect(err).To(BeNil())
			Expect(report).To(Equal(service.FanOutReport{}))
		})

		It("de-duplicates repeated fan outs", func() {
			opportunityID := uuid.New()
			candidateID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertOpportunityStm, opportunityID.String(), "backend internship",
				`["university"]`, `["go"]`, "internship", true, true, sqlTime(now.AddDate(0, 1, 0)), sqlTime(now.AddDate(0, 0, -2))))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertCandidateStm, candidateID.String(), "alice", "university", `["go"]`, 5))
			Expect(tx.Error).To(BeNil())

			srv := newService()
			_, err := srv.FanOut(context.TODO(), opportunityID)
			Expect(err).To(BeNil())
			_, err = srv.FanOut(context.TODO(), opportunityID)
			Expect(err).To(BeNil())

			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) from scheduled_notifications;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(1))
		})
	})
})
