package delivery

import (
	"context"
	"encoding/json"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Producer is a fire-and-forget wrapper around a Writer with a buffer. It is
// used for informational events (decisions, high-score matches) where the
// caller must not block on the transport; the flush path of the scheduler
// calls Deliver directly instead because it needs the synchronous result.
type Producer struct {
	buffer           *buffer
	startConsumingCh chan any
	doneCh           chan any
	writer           Writer
	topic            string
}

type ProducerOptions func(p *Producer)

func WithOutputTopic(topic string) ProducerOptions {
	return func(p *Producer) {
		p.topic = topic
	}
}

func NewProducer(w Writer, opts ...ProducerOptions) *Producer {
	p := &Producer{
		buffer:           newBuffer(),
		startConsumingCh: make(chan any),
		doneCh:           make(chan any),
		writer:           w,
		topic:            defaultTopic,
	}

	for _, o := range opts {
		o(p)
	}

	go p.run()
	return p
}

func (p *Producer) Write(ctx context.Context, kind string, body any) error {
	d, err := json.Marshal(body)
	if err != nil {
		return err
	}

	prevSize := p.buffer.Size()
	if err := p.buffer.PushBack(&message{
		Kind: kind,
		Data: d,
	}); err != nil {
		return err
	}

	if prevSize == 0 {
		// unblock the consumer and start sending messages
		p.startConsumingCh <- struct{}{}
	}

	return nil
}

func (p *Producer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		p.doneCh <- struct{}{}
		return p.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Errorf("delivery producer closed with error: %s", err)
		return err
	}

	zap.S().Named("delivery_producer").Info("delivery producer closed")

	return nil
}

func (p *Producer) run() {
	for {
		select {
		case <-p.doneCh:
			return
		default:
		}

		if p.buffer.Size() == 0 {
			select {
			case <-p.startConsumingCh:
			case <-p.doneCh:
				return
			}
		}

		msg := p.buffer.Pop()
		if msg == nil {
			continue
		}

		e := cloudevents.NewEvent()
		e.SetID(uuid.NewString())
		e.SetSource(eventSource)
		e.SetType(msg.Kind)
		_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

		if err := p.writer.Write(context.TODO(), p.topic, e); err != nil {
			zap.S().Named("delivery_producer").Errorw("failed to send message", "error", err, "event", e)
		}
	}
}
