//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"campuspass/internal/events"
	"campuspass/internal/events/kafka"
	id "campuspass/pkg/domain"
	"campuspass/pkg/testutil/containers"
)

type KafkaProducerSuite struct {
	suite.Suite
	broker string
}

func TestKafkaProducerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.GetManager().GetRedpanda(t)
	suite.Run(t, &KafkaProducerSuite{broker: rp.Broker})
}

func (s *KafkaProducerSuite) TestAppendProducesSerialKeyedRecords() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := fmt.Sprintf("pass-updates-%s", uuid.NewString())
	producer, err := kafka.NewProducer([]string{s.broker}, topic)
	s.Require().NoError(err)
	defer producer.Close()

	serial, err := id.ParseStudentID("207100001")
	s.Require().NoError(err)

	first := events.Event{
		ID:         uuid.New(),
		Type:       events.TypeDeviceRegistered,
		Serial:     serial,
		DeviceID:   "device-a",
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	second := events.Event{
		ID:         uuid.New(),
		Type:       events.TypeDeviceUnregistered,
		Serial:     serial,
		DeviceID:   "device-a",
		OccurredAt: first.OccurredAt.Add(time.Second),
	}
	s.Require().NoError(producer.Append(ctx, first))
	s.Require().NoError(producer.Append(ctx, second))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var records []*kgo.Record
	for len(records) < 2 {
		fetches := consumer.PollFetches(ctx)
		s.Require().NoError(fetches.Err())
		records = append(records, fetches.Records()...)
	}
	s.Require().Len(records, 2)

	// Same key lands both events in one partition, so produce order holds.
	for _, record := range records {
		s.Equal(serial.String(), string(record.Key))
	}

	var got events.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(first.ID, got.ID)
	s.Equal(events.TypeDeviceRegistered, got.Type)
	s.Equal(serial, got.Serial)
	s.Equal("device-a", got.DeviceID)
	s.True(first.OccurredAt.Equal(got.OccurredAt))

	s.Require().NoError(json.Unmarshal(records[1].Value, &got))
	s.Equal(second.ID, got.ID)
	s.Equal(events.TypeDeviceUnregistered, got.Type)
}
