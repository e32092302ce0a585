package store_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/config"
	st "github.com/internmatch/placement-engine/internal/store"
	"github.com/internmatch/placement-engine/internal/store/model"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const (
	insertApprovalStm = "INSERT INTO approval_requests (id, application_id, candidate_id, reviewer_id, status, priority, submitted_at) VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '%s');"
	insertReviewerStm = "INSERT INTO reviewers (id, name, eligibility_group, active) VALUES ('%s', '%s', '%s', %t);"
)

var _ = Describe("approval store", Ordered, func() {
	var (
		s      st.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := st.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = st.NewStore(db)
		gormdb = db
		_ = s.InitialMigration()
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE from approval_requests;")
		gormdb.Exec("DELETE from reviewers;")
	})

	Context("decide", func() {
		It("decides a pending request", func() {
			requestID := uuid.New()
			reviewerID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm,
				requestID.String(), uuid.NewString(), uuid.NewString(), reviewerID.String(),
				"PENDING", "HIGH", "2026-01-10 09:00:00+00"))
			Expect(tx.Error).To(BeNil())

			decided, err := s.Approval().Decide(context.TODO(), requestID, model.ApprovalStatusApproved, time.Now(), "looks good")
			Expect(err).To(BeNil())
			Expect(decided.Status).To(Equal(model.ApprovalStatusApproved))
			Expect(decided.ReviewedAt).ToNot(BeNil())
			Expect(decided.Comments).To(Equal("looks good"))
		})

		It("refuses to decide twice", func() {
			requestID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm,
				requestID.String(), uuid.NewString(), uuid.NewString(), uuid.NewString(),
				"PENDING", "LOW", "2026-01-10 09:00:00+00"))
			Expect(tx.Error).To(BeNil())

			_, err := s.Approval().Decide(context.TODO(), requestID, model.ApprovalStatusRejected, time.Now(), "")
			Expect(err).To(BeNil())

			// the second decision loses the compare-and-set
			_, err = s.Approval().Decide(context.TODO(), requestID, model.ApprovalStatusApproved, time.Now(), "")
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("pending count by reviewer", func() {
		It("zero-fills reviewers without pending requests", func() {
			busy := uuid.New()
			idle := uuid.New()

			for i := 0; i < 3; i++ {
				tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm,
					uuid.NewString(), uuid.NewString(), uuid.NewString(), busy.String(),
					"PENDING", "MEDIUM", "2026-01-10 09:00:00+00"))
				Expect(tx.Error).To(BeNil())
			}
			// decided requests do not count as load
			tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm,
				uuid.NewString(), uuid.NewString(), uuid.NewString(), idle.String(),
				"APPROVED", "MEDIUM", "2026-01-10 09:00:00+00"))
			Expect(tx.Error).To(BeNil())

			counts, err := s.Approval().PendingCountByReviewer(context.TODO(), []uuid.UUID{busy, idle})
			Expect(err).To(BeNil())
			Expect(counts).To(HaveLen(2))
			Expect(counts[busy]).To(Equal(int64(3)))
			Expect(counts[idle]).To(Equal(int64(0)))
		})
	})

	Context("list", func() {
		It("orders by priority then submission time", func() {
			reviewerID := uuid.New()

			rows := []struct {
				priority    string
				submittedAt string
			}{
				{"LOW", "2026-01-08 09:00:00+00"},
				{"URGENT", "2026-01-10 09:00:00+00"},
				{"HIGH", "2026-01-09 09:00:00+00"},
				{"URGENT", "2026-01-09 09:00:00+00"},
			}
			for _, row := range rows {
				tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm,
					uuid.NewString(), uuid.NewString(), uuid.NewString(), reviewerID.String(),
					"PENDING", row.priority, row.submittedAt))
				Expect(tx.Error).To(BeNil())
			}

			requests, err := s.Approval().List(context.TODO(),
				st.NewApprovalQueryFilter().ByReviewerID(reviewerID).ByStatus(model.ApprovalStatusPending),
				st.SortByPriorityThenSubmitted)
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(4))

			Expect(requests[0].Priority).To(Equal(model.PriorityUrgent))
			Expect(requests[1].Priority).To(Equal(model.PriorityUrgent))
			Expect(requests[0].SubmittedAt.Before(requests[1].SubmittedAt)).To(BeTrue())
			Expect(requests[2].Priority).To(Equal(model.PriorityHigh))
			Expect(requests[3].Priority).To(Equal(model.PriorityLow))
		})

		It("filters stale pending requests", func() {
			reviewerID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertApprovalStm,
				uuid.NewString(), uuid.NewString(), uuid.NewString(), reviewerID.String(),
				"PENDING", "LOW", "2026-01-08 09:00:00+00"))
			Expect(tx.Error).To(BeNil())
			tx = gormdb.Exec(fmt.Sprintf(insertApprovalStm,
				uuid.NewString(), uuid.NewString(), uuid.NewString(), reviewerID.String(),
				"PENDING", "LOW", "2026-01-12 09:00:00+00"))
			Expect(tx.Error).To(BeNil())

			cutoff := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
			requests, err := s.Approval().List(context.TODO(),
				st.NewApprovalQueryFilter().ByStatus(model.ApprovalStatusPending).SubmittedBefore(cutoff),
				st.Unsorted)
			Expect(err).To(BeNil())
			Expect(requests).To(HaveLen(1))
		})
	})

	Context("reviewer stats", func() {
		It("accumulates decisions", func() {
			reviewerID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertReviewerStm, reviewerID.String(), "rev-1", "university", true))
			Expect(tx.Error).To(BeNil())

			Expect(s.Reviewer().RecordDecision(context.TODO(), reviewerID, true, 3600)).To(BeNil())
			Expect(s.Reviewer().RecordDecision(context.TODO(), reviewerID, false, 7200)).To(BeNil())

			stats, err := s.Reviewer().Stats(context.TODO(), reviewerID)
			Expect(err).To(BeNil())
			Expect(stats.Decided).To(Equal(int64(2)))
			Expect(stats.Approved).To(Equal(int64(1)))
			Expect(stats.ApprovalRate()).To(Equal(0.5))
			Expect(stats.AverageResponse()).To(Equal(90 * time.Minute))
		})

		AfterEach(func() {
			gormdb.Exec("DELETE from reviewer_stats;")
		})
	})
})
