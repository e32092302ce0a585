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

const insertNotificationStm = "INSERT INTO scheduled_notifications (id, recipient_id, category, subject_id, trigger_window, scheduled_for, priority) VALUES ('%s', '%s', '%s', '%s', '%s', '%s', '%s');"

var _ = Describe("notification store", Ordered, func() {
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
		gormdb.Exec("DELETE from scheduled_notifications;")
	})

	Context("create if absent", func() {
		It("creates a notification", func() {
			created, err := s.Notification().CreateIfAbsent(context.TODO(), model.ScheduledNotification{
				ID:            uuid.New(),
				RecipientID:   uuid.New(),
				Category:      model.CategoryDeadline,
				SubjectID:     uuid.New(),
				TriggerWindow: "deadline-7d",
				ScheduledFor:  time.Now(),
				Priority:      model.PriorityMedium,
			})
			Expect(err).To(BeNil())
			Expect(created).ToNot(BeNil())
			Expect(created.SentAt).To(BeNil())
		})

		It("rejects a duplicate of an unsent notification", func() {
			recipient := uuid.New()
			subject := uuid.New()

			notification := model.ScheduledNotification{
				ID:            uuid.New(),
				RecipientID:   recipient,
				Category:      model.CategoryDeadline,
				SubjectID:     subject,
				TriggerWindow: "deadline-7d",
				ScheduledFor:  time.Now(),
				Priority:      model.PriorityMedium,
			}
			_, err := s.Notification().CreateIfAbsent(context.TODO(), notification)
			Expect(err).To(BeNil())

			notification.ID = uuid.New()
			_, err = s.Notification().CreateIfAbsent(context.TODO(), notification)
			Expect(err).To(MatchError(st.ErrDuplicateKey))
		})

		It("allows a new notification once the previous one is sent", func() {
			recipient := uuid.New()
			subject := uuid.New()

			notification := model.ScheduledNotification{
				ID:            uuid.New(),
				RecipientID:   recipient,
				Category:      model.CategoryApproval,
				SubjectID:     subject,
				TriggerWindow: "approval-nudge",
				ScheduledFor:  time.Now(),
				Priority:      model.PriorityHigh,
			}
			first, err := s.Notification().CreateIfAbsent(context.TODO(), notification)
			Expect(err).To(BeNil())

			Expect(s.Notification().MarkSent(context.TODO(), first.ID, time.Now())).To(BeNil())

			notification.ID = uuid.New()
			_, err = s.Notification().CreateIfAbsent(context.TODO(), notification)
			Expect(err).To(BeNil())
		})

		It("allows the same subject in a different window", func() {
			recipient := uuid.New()
			subject := uuid.New()

			notification := model.ScheduledNotification{
				ID:            uuid.New(),
				RecipientID:   recipient,
				Category:      model.CategoryDeadline,
				SubjectID:     subject,
				TriggerWindow: "deadline-7d",
				ScheduledFor:  time.Now(),
				Priority:      model.PriorityMedium,
			}
			_, err := s.Notification().CreateIfAbsent(context.TODO(), notification)
			Expect(err).To(BeNil())

			notification.ID = uuid.New()
			notification.TriggerWindow = "deadline-1d"
			_, err = s.Notification().CreateIfAbsent(context.TODO(), notification)
			Expect(err).To(BeNil())
		})
	})

	Context("mark sent", func() {
		It("sets sent_at exactly once", func() {
			notificationID := uuid.New()
			tx := gormdb.Exec(fmt.Sprintf(insertNotificationStm,
				notificationID.String(), uuid.NewString(), "GENERAL", uuid.NewString(),
				"recommendation", "2026-01-10 09:00:00+00", "MEDIUM"))
			Expect(tx.Error).To(BeNil())

			Expect(s.Notification().MarkSent(context.TODO(), notificationID, time.Now())).To(BeNil())

			// second call finds no unsent row
			err := s.Notification().MarkSent(context.TODO(), notificationID, time.Now())
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("returns unsent due notifications, priority first", func() {
			now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

			rows := []struct {
				scheduledFor string
				priority     string
			}{
				{"2026-01-10 09:00:00+00", "LOW"},
				{"2026-01-10 10:00:00+00", "URGENT"},
				{"2026-01-11 09:00:00+00", "HIGH"}, // not due yet
			}
			for _, row := range rows {
				tx := gormdb.Exec(fmt.Sprintf(insertNotificationStm,
					uuid.NewString(), uuid.NewString(), "GENERAL", uuid.NewString(),
					"recommendation", row.scheduledFor, row.priority))
				Expect(tx.Error).To(BeNil())
			}

			due, err := s.Notification().List(context.TODO(),
				st.NewNotificationQueryFilter().Unsent().DueBefore(now),
				st.SortByPriorityThenDue)
			Expect(err).To(BeNil())
			Expect(due).To(HaveLen(2))
			Expect(due[0].Priority).To(Equal(model.PriorityUrgent))
			Expect(due[1].Priority).To(Equal(model.PriorityLow))
		})
	})
})
