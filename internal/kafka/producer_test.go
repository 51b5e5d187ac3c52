package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func newTestProducer(writer *MockWriter) *Producer {
	return &Producer{
		Writer: writer,
		Topics: Topics{OrderCreated: "orders.created", OrderStatus: "orders.status"},
		Logger: logger.Discard(),
	}
}

func TestPublishOrderCreated(t *testing.T) {
	writer := new(MockWriter)
	var sent []kafka.Message
	writer.On("WriteMessages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).([]kafka.Message)
	}).Return(nil)

	p := newTestProducer(writer)
	err := p.PublishOrderCreated(context.Background(), models.OrderEvent{OrderID: 42, RestaurantID: 1, Status: models.OrderPending})
	require.NoError(t, err)

	require.Len(t, sent, 1)
	assert.Equal(t, "orders.created", sent[0].Topic)
	assert.Equal(t, "42", string(sent[0].Key))
	var event models.OrderEvent
	require.NoError(t, json.Unmarshal(sent[0].Value, &event))
	assert.Equal(t, models.EventOrderCreated, event.Type)
	assert.Equal(t, models.OrderPending, event.Status)
}

func TestPublishOrderStatusError(t *testing.T) {
	writer := new(MockWriter)
	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 && msgs[0].Topic == "orders.status"
	})).Return(errors.New("broker down"))

	err := newTestProducer(writer).PublishOrderStatus(context.Background(), models.OrderEvent{OrderID: 7, Status: models.OrderSent})
	assert.ErrorContains(t, err, "broker down")
	writer.AssertExpectations(t)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishOrderCreated(context.Background(), models.OrderEvent{}))
	assert.NoError(t, p.PublishOrderStatus(context.Background(), models.OrderEvent{}))
	assert.NoError(t, p.Close())
}

func TestUniqueTopics(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueTopics([]string{"a", "", "b", "a"}))
}

func TestEnsureTopicsNeedsBrokers(t *testing.T) {
	assert.Error(t, EnsureTopicsExist(context.Background(), nil, []string{"a"}, logger.Discard()))
}

func TestNewProducerBoundsWrites(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:1"}, Topics{OrderCreated: "a", OrderStatus: "b"}, nil)
	defer p.Close()

	writer, ok := p.Writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, 2, writer.MaxAttempts)
	assert.Equal(t, 2*time.Second, writer.WriteTimeout)
	assert.Equal(t, publishTimeout, p.Timeout)
}

func TestPublishUsesDeadline(t *testing.T) {
	writer := new(MockWriter)
	var deadline bool
	writer.On("WriteMessages", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		_, deadline = args.Get(0).(context.Context).Deadline()
	}).Return(nil)

	p := newTestProducer(writer)
	p.Timeout = time.Second
	require.NoError(t, p.PublishOrderStatus(context.Background(), models.OrderEvent{OrderID: 3}))
	assert.True(t, deadline)
}
