package sqs

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSQSClient struct {
	sendMessageFunc func(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

func (m *mockSQSClient) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if m.sendMessageFunc != nil {
		return m.sendMessageFunc(ctx, params, optFns...)
	}
	return &sqs.SendMessageOutput{}, nil
}

type testEvent struct {
	subject string
	payload []byte
	err     error
}

func (e testEvent) Subject() string          { return e.subject }
func (e testEvent) Payload() ([]byte, error) { return e.payload, e.err }

const queueURL = "https://sqs.us-east-1.amazonaws.com/123456789/catalog-events"

func TestPublisher_Publish(t *testing.T) {
	t.Run("successful message publish", func(t *testing.T) {
		// given
		var sent *sqs.SendMessageInput
		client := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				sent = params
				return &sqs.SendMessageOutput{MessageId: aws.String("test-message-id")}, nil
			},
		}
		publisher := NewPublisher(client, queueURL)

		// when
		err := publisher.Publish(context.Background(), testEvent{
			subject: "catalog.products.updated",
			payload: []byte(`{"referencia":"123-ABCDR"}`),
		})

		// then
		require.NoError(t, err)
		require.NotNil(t, sent)
		assert.Equal(t, queueURL, *sent.QueueUrl)
		assert.JSONEq(t, `{"referencia":"123-ABCDR"}`, *sent.MessageBody)
		assert.Equal(t, "catalog.products.updated", *sent.MessageAttributes[SubjectAttribute].StringValue)
	})

	t.Run("error sending message", func(t *testing.T) {
		// given
		client := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, _ *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				return nil, errors.New("failed to send message")
			},
		}
		publisher := NewPublisher(client, queueURL)

		// when
		err := publisher.Publish(context.Background(), testEvent{subject: "s", payload: []byte(`{}`)})

		// then
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send message to SQS")
	})

	t.Run("payload error skips sending", func(t *testing.T) {
		// given
		called := false
		client := &mockSQSClient{
			sendMessageFunc: func(_ context.Context, _ *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
				called = true
				return &sqs.SendMessageOutput{}, nil
			},
		}
		publisher := NewPublisher(client, queueURL)

		// when
		err := publisher.Publish(context.Background(), testEvent{subject: "s", err: errors.New("boom")})

		// then
		require.Error(t, err)
		assert.False(t, called)
	})
}
