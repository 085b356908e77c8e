package producers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDLQProducer_PublishToDLQ(t *testing.T) {
	ctx := context.Background()
	dlqTopic := "wallet.transactions.dlq"

	t.Run("wraps original message", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := &DLQProducer{logger: newTestLogger(), writer: writer, dlqTopic: dlqTopic}

		key := "42"
		original := []byte(`{"transaction_id":42}`)
		reason := "invalid event payload"

		writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
			if len(msgs) != 1 || string(msgs[0].Key) != key {
				return false
			}
			var letter DeadLetter
			if err := json.Unmarshal(msgs[0].Value, &letter); err != nil {
				return false
			}
			return letter.OriginalKey == key &&
				letter.OriginalValue == string(original) &&
				letter.Reason == reason &&
				letter.FailedAt != "" &&
				msgs[0].Headers[0].Key == dlqReasonHeader
		})).Return(nil).Once()

		require.NoError(t, producer.PublishToDLQ(ctx, key, original, reason))
		writer.AssertExpectations(t)
	})

	t.Run("records source topic and time", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		failedAt := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)
		producer := &DLQProducer{
			logger:      newTestLogger(),
			writer:      writer,
			dlqTopic:    dlqTopic,
			sourceTopic: "wallet.transactions",
			now:         func() time.Time { return failedAt },
		}

		var written kafka.Message
		writer.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).
			Run(func(args mock.Arguments) { written = args.Get(1).([]kafka.Message)[0] }).
			Return(nil).Once()

		require.NoError(t, producer.PublishToDLQ(ctx, "7", []byte("not json"), "decode failed"))

		var letter DeadLetter
		require.NoError(t, json.Unmarshal(written.Value, &letter))
		assert.Equal(t, "wallet.transactions", letter.SourceTopic)
		assert.Equal(t, "not json", letter.OriginalValue)
		assert.Equal(t, "2024-06-01T08:30:00Z", letter.FailedAt)
		require.Len(t, written.Headers, 2)
		assert.Equal(t, dlqSourceTopicHeader, written.Headers[1].Key)
		assert.Equal(t, "wallet.transactions", string(written.Headers[1].Value))
		writer.AssertExpectations(t)
	})

	t.Run("writer error", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		producer := &DLQProducer{logger: newTestLogger(), writer: writer, dlqTopic: dlqTopic}
		writeErr := errors.New("kafka DLQ write error")

		writer.On("WriteMessages", ctx, mock.AnythingOfType("[]kafka.Message")).Return(writeErr).Once()

		err := producer.PublishToDLQ(ctx, "k", []byte("v"), "reason")
		assert.ErrorIs(t, err, writeErr)
		writer.AssertExpectations(t)
	})

	t.Run("disabled", func(t *testing.T) {
		var producer *DLQProducer
		assert.ErrorIs(t, producer.PublishToDLQ(ctx, "k", []byte("v"), "reason"), ErrDLQDisabled)

		withoutWriter := &DLQProducer{logger: newTestLogger(), dlqTopic: dlqTopic}
		assert.ErrorIs(t, withoutWriter.PublishToDLQ(ctx, "k", []byte("v"), "reason"), ErrDLQDisabled)
	})
}

func TestDLQProducer_Close(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		writer.On("Close").Return(nil).Once()

		producer := &DLQProducer{logger: newTestLogger(), writer: writer, dlqTopic: "dlq"}
		require.NoError(t, producer.Close())
		writer.AssertExpectations(t)
	})

	t.Run("writer error", func(t *testing.T) {
		writer := new(MockKafkaWriter)
		closeErr := errors.New("kafka DLQ close error")
		writer.On("Close").Return(closeErr).Once()

		producer := &DLQProducer{logger: newTestLogger(), writer: writer, dlqTopic: "dlq"}
		assert.ErrorIs(t, producer.Close(), closeErr)
	})

	t.Run("disabled", func(t *testing.T) {
		var producer *DLQProducer
		assert.NoError(t, producer.Close())
	})
}
