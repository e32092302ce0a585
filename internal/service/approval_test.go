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

var _ = Describe("approval service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		now    time.Time
	)

	seedApplication := func(status string, deadline time.Time) (applicationID, candidateID, opportunityID uuid.UUID) {
		applicationID = uuid.New()
		candidateID = uuid.New()
		opportunityID = uuid.New()

		tx := gormdb.Exec(fmt.Sprintf(insertCandidateStm, candidateID.String(), "alice", "university", `["go"]`, 2))
		Expect(tx.Error).To(BeNil())
		tx = gormdb.Exec(fmt.Sprintf(insertOpportunityStm, opportunityID.String(), "backend internship",
			`["university"]`, `["go"]`, "internship", true, true, sqlTime(deadline), sqlTime(now.AddDate(0, 0, -10))))
		Expect(tx.Error).To(BeNil())
		tx = gormdb.Exec(fmt.Sprintf(insertApplicationStm, applicationID.String(), candidateID.String(), opportunityID.String(), status, sqlTime(now)))
		Expect(tx.Error).To(BeNil())
		return
	}

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
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
		gormdb.Exec("DELETE from approval_requests;")
		gormdb.Exec("DELETE from applications;")
		gormdb.Exec("DELETE from opportunities;")
		gormdb.Exec("DELETE from candidates;")
		gormdb.Exec("DELETE from reviewers;")
		gormdb.Exec("DELETE from reviewer_stats;")
	})

	Context("submit", func() {
		It("assigns the least loaded reviewer of the group", func() {
			applicationID, _, _ := seedApplication("APPLIED", now.AddDate(0, 1, 0))

			busy := uuid.New()
			idle := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, busy.String(), "busy", "university", true))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertReviewerStm, idle.String(), "idle", "university", true))
			Expect(tx.Error).To(BeNil())
			for i := 0; i < 2; i++ {
				tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm, uuid.NewString(), uuid.NewString(), uuid.NewString(),
					busy.String(), "PENDING", "LOW", sqlTime(now.Add(-time.Hour))))
				Expect(tx.Error).To(BeNil())
			}

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			result, err := srv.Submit(context.TODO(), applicationID)
			Expect(err).To(BeNil())
			Expect(result.ReviewerID).To(Equal(idle))
			Expect(result.Priority).To(Equal(model.PriorityLow))

			application, err := s.Application().Get(context.TODO(), applicationID)
			Expect(err).To(BeNil())
			Expect(application.Status).To(Equal(model.ApplicationStatusMentorReview))
		})

		It("computes URGENT priority near the deadline", func() {
			applicationID, _, _ := seedApplication("APPLIED", now.AddDate(0, 0, 2))

			reviewerID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, reviewerID.String(), "rev", "university", true))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			result, err := srv.Submit(context.TODO(), applicationID)
			Expect(err).To(BeNil())
			Expect(result.Priority).To(Equal(model.PriorityUrgent))
			Expect(result.ResponseWindow).To(Equal(12 * time.Hour))
		})

		It("rejects a duplicate submission", func() {
			applicationID, candidateID, _ := seedApplication("MENTOR_REVIEW", now.AddDate(0, 1, 0))

			reviewerID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, reviewerID.String(), "rev", "university", true))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm, uuid.NewString(), applicationID.String(), candidateID.String(),
				reviewerID.String(), "PENDING", "LOW", sqlTime(now)))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			_, err := srv.Submit(context.TODO(), applicationID)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrDuplicateSubmission{}))
		})

		It("fails when no reviewer serves the group", func() {
			applicationID, _, _ := seedApplication("APPLIED", now.AddDate(0, 1, 0))

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			_, err := srv.Submit(context.TODO(), applicationID)
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNoReviewerAvailable{}))

			// the transaction left nothing behind
			count := 0
			Expect(gormdb.Raw("SELECT COUNT(*) from approval_requests;").Scan(&count).Error).To(BeNil())
			Expect(count).To(Equal(0))
		})
	})

	Context("decide", func() {
		It("advances the application to employer review on approval", func() {
			applicationID, candidateID, _ := seedApplication("MENTOR_REVIEW", now.AddDate(0, 1, 0))

			reviewerID := uuid.New()
			requestID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, reviewerID.String(), "rev", "university", true))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm, requestID.String(), applicationID.String(), candidateID.String(),
				reviewerID.String(), "PENDING", "MEDIUM", sqlTime(now.Add(-2*time.Hour))))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			next, err := srv.Decide(context.TODO(), requestID, reviewerID, "APPROVED", "solid application")
			Expect(err).To(BeNil())
			Expect(next).To(Equal(model.ApplicationStatusEmployerReview))

			stats, err := s.Reviewer().Stats(context.TODO(), reviewerID)
			Expect(err).To(BeNil())
			Expect(stats.Decided).To(Equal(int64(1)))
			Expect(stats.Approved).To(Equal(int64(1)))
		})

		It("advances the application to mentor rejected on rejection", func() {
			applicationID, candidateID, _ := seedApplication("MENTOR_REVIEW", now.AddDate(0, 1, 0))

			reviewerID := uuid.New()
			requestID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, reviewerID.String(), "rev", "university", true))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm, requestID.String(), applicationID.String(), candidateID.String(),
				reviewerID.String(), "PENDING", "MEDIUM", sqlTime(now.Add(-2*time.Hour))))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			next, err := srv.Decide(context.TODO(), requestID, reviewerID, "REJECTED", "not a fit")
			Expect(err).To(BeNil())
			Expect(next).To(Equal(model.ApplicationStatusMentorRejected))
		})

		It("rejects deciding an already decided request", func() {
			applicationID, candidateID, _ := seedApplication("EMPLOYER_REVIEW", now.AddDate(0, 1, 0))

			reviewerID := uuid.New()
			requestID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, reviewerID.String(), "rev", "university", true))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm, requestID.String(), applicationID.String(), candidateID.String(),
				reviewerID.String(), "APPROVED", "MEDIUM", sqlTime(now.Add(-2*time.Hour))))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			_, err := srv.Decide(context.TODO(), requestID, reviewerID, "REJECTED", "")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrRequestAlreadyDecided{}))
		})

		It("rejects a decision from the wrong reviewer", func() {
			applicationID, candidateID, _ := seedApplication("MENTOR_REVIEW", now.AddDate(0, 1, 0))

			reviewerID := uuid.New()
			requestID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm, requestID.String(), applicationID.String(), candidateID.String(),
				reviewerID.String(), "PENDING", "MEDIUM", sqlTime(now)))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			_, err := srv.Decide(context.TODO(), requestID, uuid.New(), "APPROVED", "")
			Expect(err).To(BeAssignableToTypeOf(&service.ErrNotAssignedReviewer{}))
		})
	})

	Context("workqueue", func() {
		It("orders by priority and flags overdue requests", func() {
			reviewerID := uuid.New()

			// LOW submitted 4 days ago: overdue (72h window)
			tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm, uuid.NewString(), uuid.NewString(), uuid.NewString(),
				reviewerID.String(), "PENDING", "LOW", sqlTime(now.Add(-4*24*time.Hour))))
			Expect(tx.Error).To(BeNil())
			// URGENT submitted 2 hours ago: inside the 12h window
			tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm, uuid.NewString(), uuid.NewString(), uuid.NewString(),
				reviewerID.String(), "PENDING", "URGENT", sqlTime(now.Add(-2*time.Hour))))
			Expect(tx.Error).To(BeNil())

			srv := service.NewApprovalService(s, nil).WithClock(func() time.Time { return now })
			items, err := srv.Workqueue(context.TODO(), reviewerID)
			Expect(err).To(BeNil())
			Expect(items).To(HaveLen(2))
			Expect(items[0].Priority).To(Equal(model.PriorityUrgent))
			Expect(items[0].Overdue).To(BeFalse())
			Expect(items[1].Priority).To(Equal(model.PriorityLow))
			Expect(items[1].Overdue).To(BeTrue())
		})
	})
})
