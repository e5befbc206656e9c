package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// QueueSender sends messages to a single SQS queue.
type QueueSender interface {
	Send(ctx context.Context, eventType string, body []byte) error
}

type sqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSProducer struct {
	client   sqsAPI
	queueURL string
}

func NewSQSProducer(cfg sdkaws.Config, queueURL string) *SQSProducer {
	return &SQSProducer{client: sqs.NewFromConfig(cfg), queueURL: queueURL}
}

func (p *SQSProducer) Send(ctx context.Context, eventType string, body []byte) error {
	_, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(p.queueURL),
		MessageBody: sdkaws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: sdkaws.String("String"), StringValue: sdkaws.String(eventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("sqs send failed for queue %s: %w", p.queueURL, err)
	}
	return nil
}
