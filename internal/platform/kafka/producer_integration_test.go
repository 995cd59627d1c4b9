//go:build integration

package kafka_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"redhope/internal/platform/kafka"
	id "redhope/pkg/domain"
	audit "redhope/pkg/platform/audit"
	"redhope/pkg/testutil/containers"
)

type ProducerSuite struct {
	suite.Suite
	broker   string
	producer *kafka.Producer
	topic    string
}

func TestProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerSuite))
}

func (s *ProducerSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
	s.topic = "redhope.audit.test"

	p, err := kafka.NewProducer([]string{s.broker}, s.topic)
	s.Require().NoError(err)
	s.producer = p

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(p.EnsureTopic(ctx, 3, 1))
	s.Require().NoError(p.EnsureTopic(ctx, 3, 1), "second call tolerates an existing topic")
}

func (s *ProducerSuite) TearDownSuite() {
	if s.producer != nil {
		s.producer.Close()
	}
}

func (s *ProducerSuite) TestAppendIsKeyedByBank() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bankID := id.NewBankID()
	event := audit.Event{
		ID:        "evt-1",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Action:    string(audit.EventStockIncreased),
		BankID:    bankID,
		Detail:    map[string]string{"blood_group": "A+", "units": "4"},
	}
	s.Require().NoError(s.producer.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	for {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(ctx.Err(), "timed out waiting for record")
		var found *kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == bankID.String() {
				found = r
			}
		})
		if found == nil {
			continue
		}
		decoded, err := audit.Unmarshal(found.Value)
		s.Require().NoError(err)
		s.Equal(event.Action, decoded.Action)
		s.Equal(bankID, decoded.BankID)
		return
	}
}
