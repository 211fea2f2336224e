package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gartstein/jobboard/internal/jobboard/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockKafkaWriter implements KafkaWriter for testing
type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNewEvent(t *testing.T) {
	job := &models.Job{ID: 12}
	app := &models.Application{ID: 3, JobID: 12, StudentID: 9}

	event := NewEvent(ApplicationSubmitted, job, app)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, ApplicationSubmitted, event.Type)
	assert.Same(t, job, event.Job)
	assert.Same(t, app, event.Application)
	assert.False(t, event.OccurredAt.IsZero())
	assert.Equal(t, []byte("12"), event.key())

	other := NewEvent(ApplicationSubmitted, job, app)
	assert.NotEqual(t, event.ID, other.ID, "event ids must be unique")
}

func TestProducer_Produce(t *testing.T) {
	t.Run("successful produce", func(t *testing.T) {
		producer := &Producer{
			events: make(chan Event, 1),
			logger: zaptest.NewLogger(t),
		}

		producer.Produce(NewEvent(JobCreated, &models.Job{ID: 1}, nil))

		assert.Equal(t, 1, len(producer.events))
	})

	t.Run("dropped event when queue full", func(t *testing.T) {
		core, recorded := observer.New(zap.WarnLevel)
		producer := &Producer{
			events: make(chan Event, 1),
			logger: zap.New(core),
		}
		job := &models.Job{ID: 1}

		// Fill the channel
		producer.Produce(NewEvent(JobCreated, job, nil))
		producer.Produce(NewEvent(JobCreated, job, nil)) // This should be dropped

		assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
	})
}

func TestProducer_SendEvent(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	job := &models.Job{ID: 77, Title: "Backend Engineer"}

	producer := &Producer{
		writer: mockWriter,
		logger: zaptest.NewLogger(t),
	}

	t.Run("successful send", func(t *testing.T) {
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil).Once()

		event := NewEvent(JobCreated, job, nil)
		producer.sendEvent(context.Background(), event)

		mockWriter.AssertCalled(t, "WriteMessages", mock.Anything, []kafka.Message{
			{
				Key:   []byte("77"),
				Value: mustMarshal(t, event),
				Headers: []kafka.Header{
					{Key: "event_type", Value: []byte(JobCreated)},
				},
			},
		})
	})

	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)

		// Mock JSON marshaling to force error
		oldMarshal := jsonMarshal
		jsonMarshal = func(_ interface{}) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		producer.sendEvent(context.Background(), NewEvent(JobCreated, job, nil))

		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
		assert.Equal(t, 1, recorded.FilterField(zap.Uint("job_id", job.ID)).Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer.logger = zap.New(core)
		mockWriter.ExpectedCalls = nil
		mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("kafka error"))

		producer.sendEvent(context.Background(), NewEvent(JobDeleted, job, nil))

		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}

func TestProducer_EventLoopAndClose(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), 10)

	producer.Produce(NewEvent(JobCreated, &models.Job{ID: 1}, nil))
	producer.Produce(NewEvent(JobUpdated, &models.Job{ID: 1}, nil))

	// Close drains the queue before closing the writer.
	producer.Close()

	select {
	case <-producer.done:
	case <-time.After(time.Second):
		t.Fatal("event loop did not stop")
	}

	mockWriter.AssertNumberOfCalls(t, "WriteMessages", 2)
	mockWriter.AssertCalled(t, "Close")
}

func TestProducer_CloseTwice(t *testing.T) {
	mockWriter := new(MockKafkaWriter)
	mockWriter.On("Close").Return(nil)

	producer := newProducer(mockWriter, zaptest.NewLogger(t), 1)

	assert.NotPanics(t, func() {
		producer.Close()
		producer.Close()
	})
	mockWriter.AssertNumberOfCalls(t, "Close", 1)
}

func TestNopProducer(t *testing.T) {
	var p NopProducer
	assert.NotPanics(t, func() {
		p.Produce(NewEvent(JobCreated, &models.Job{ID: 1}, nil))
		p.Close()
	})
}

func mustMarshal(t *testing.T, event Event) []byte {
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}
