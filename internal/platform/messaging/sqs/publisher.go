package sqs

import (
	"context"
	"fmt"

	"github.com/abgdnv/catalog/internal/platform/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// SubjectAttribute is the message attribute carrying the event subject.
const SubjectAttribute = "subject"

// Client is the part of the SQS API the publisher needs.
type Client interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Publisher sends events to a single SQS queue.
type Publisher struct {
	client   Client
	queueURL string
}

func NewPublisher(client Client, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
	}
}

func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	body, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			SubjectAttribute: {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Subject()),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}
	return nil
}
