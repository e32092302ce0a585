// Package delivery is the outbound channel boundary of the engine. The real
// transport (email, push) lives behind the Writer interface; the engine only
// requires at-least-once semantics and a synchronous error for the flush path.
package delivery

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"github.com/internmatch/placement-engine/internal/store/model"
)

const (
	NotificationMessageKind string = "placement.engine.events.notification"
	DecisionMessageKind     string = "placement.engine.events.decision"
	MatchMessageKind        string = "placement.engine.events.match"
	defaultTopic            string = "placement.engine.events"

	eventSource = "placement.engine"
)

// Writer is the interface to be implemented by the underlying transport.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// Deliver sends one scheduled notification synchronously. The caller decides,
// based on the returned error, whether to mark the row sent.
func Deliver(ctx context.Context, w Writer, notification model.ScheduledNotification) error {
	e := cloudevents.NewEvent()
	e.SetID(uuid.NewString())
	e.SetSource(eventSource)
	e.SetType(NotificationMessageKind)
	e.SetSubject(notification.SubjectID.String())
	e.SetExtension("recipient", notification.RecipientID.String())
	e.SetExtension("category", string(notification.Category))
	_ = e.SetData(*cloudevents.StringOfApplicationJSON(), notification.Payload)

	return w.Write(ctx, defaultTopic, e)
}
