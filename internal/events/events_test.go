package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected publish deadline")
	}
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeSQS struct {
	in *sqs.SendMessageInput
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.in = in
	return &sqs.SendMessageOutput{}, nil
}

func sampleEvent() Event {
	return Event{
		Type:       TypeMatchCreated,
		MatchID:    "match-1",
		OwnerID:    "user-1",
		MatchScore: 72,
		Status:     "Good Match",
		OccurredAt: time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestEncodeUsesCamelCaseFields(t *testing.T) {
	raw, err := Encode(sampleEvent())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"type", "matchId", "ownerId", "matchScore", "status", "occurredAt"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing %s in %s", key, raw)
		}
	}
}

func TestAMQPPublisherRoutesByType(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "match_events"}

	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ch.exchange != "match_events" || ch.key != TypeMatchCreated {
		t.Fatalf("unexpected routing: exchange=%q key=%q", ch.exchange, ch.key)
	}
	if ch.msg.ContentType != "application/json" || ch.msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected message properties: %+v", ch.msg)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !ch.closed {
		t.Fatalf("expected channel closed")
	}
}

func TestAMQPPublisherWrapsErrors(t *testing.T) {
	boom := errors.New("channel closed")
	p := &AMQPPublisher{channel: &fakeChannel{err: boom}, exchange: "x"}
	if err := p.Publish(context.Background(), sampleEvent()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestSQSPublisherSendsTypeAttribute(t *testing.T) {
	fake := &fakeSQS{}
	p := &SQSPublisher{client: fake, queueURL: "https://sqs.test/queue"}
	evt := sampleEvent()
	evt.Type = TypeMatchDeleted

	if err := p.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if aws.ToString(fake.in.QueueUrl) != "https://sqs.test/queue" {
		t.Fatalf("unexpected queue url %q", aws.ToString(fake.in.QueueUrl))
	}
	if got := aws.ToString(fake.in.MessageAttributes["type"].StringValue); got != TypeMatchDeleted {
		t.Fatalf("unexpected type attribute %q", got)
	}
}

func TestNopPublisher(t *testing.T) {
	if err := (Nop{}).Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("nop publish: %v", err)
	}
}
