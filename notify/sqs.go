package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// sqsAPI is the part of *sqs.Client used here.
type sqsAPI interface {
	GetQueueUrl(ctx context.Context, in *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// queueURL resolves a queue name once and caches the URL.
type queueURL struct {
	client sqsAPI
	name   string

	mu  sync.Mutex
	url string
}

func (q *queueURL) get(ctx context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.url != "" {
		return q.url, nil
	}
	out, err := q.client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(q.name)})
	if err != nil {
		return "", fmt.Errorf("resolve queue %s: %w", q.name, err)
	}
	q.url = aws.ToString(out.QueueUrl)
	return q.url, nil
}

// SQSDispatcher puts confirmations on the order processing queue.
type SQSDispatcher struct {
	client sqsAPI
	queue  *queueURL
}

func NewSQSDispatcher(client *sqs.Client, queueName string) *SQSDispatcher {
	return newSQSDispatcher(client, queueName)
}

func newSQSDispatcher(client sqsAPI, queueName string) *SQSDispatcher {
	return &SQSDispatcher{client: client, queue: &queueURL{client: client, name: queueName}}
}

func (d *SQSDispatcher) Dispatch(ctx context.Context, conf OrderConfirmation) error {
	url, err := d.queue.get(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(conf)
	if err != nil {
		return fmt.Errorf("encode confirmation: %w", err)
	}

	out, err := d.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(url),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"orderId": {DataType: aws.String("String"), StringValue: aws.String(conf.OrderID)},
		},
	})
	if err != nil {
		return fmt.Errorf("send order %s to %s: %w", conf.OrderID, d.queue.name, err)
	}
	log.Printf("📨 Order %s sent to queue %s (message %s)", conf.OrderID, d.queue.name, aws.ToString(out.MessageId))
	return nil
}
