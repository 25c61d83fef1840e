package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type ConsumerConfig struct {
	QueueName string
	TopicARN  string
	DLQURL    string // optional; undecodable messages are only logged and dropped without it
	WaitTime  int32  // long-poll seconds
	BatchSize int32
}

// Consumer turns queued order confirmations into emails published on an SNS topic.
type Consumer struct {
	sqs   sqsAPI
	sns   snsAPI
	queue *queueURL
	cfg   ConsumerConfig
}

func NewConsumer(sqsClient *sqs.Client, snsClient *sns.Client, cfg ConsumerConfig) *Consumer {
	return newConsumer(sqsClient, snsClient, cfg)
}

func newConsumer(sqsClient sqsAPI, snsClient snsAPI, cfg ConsumerConfig) *Consumer {
	if cfg.WaitTime <= 0 {
		cfg.WaitTime = 20
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > 10 {
		cfg.BatchSize = 10
	}
	return &Consumer{
		sqs:   sqsClient,
		sns:   snsClient,
		queue: &queueURL{client: sqsClient, name: cfg.QueueName},
		cfg:   cfg,
	}
}

// Run polls until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	log.Printf("📥 Order consumer listening on %s", c.cfg.QueueName)
	for ctx.Err() == nil {
		if _, err := c.PollOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("❌ Order consumer: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
		}
	}
}

// PollOnce receives one batch and returns how many messages were handled
// and deleted.
func (c *Consumer) PollOnce(ctx context.Context) (int, error) {
	url, err := c.queue.get(ctx)
	if err != nil {
		return 0, err
	}
	out, err := c.sqs.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(url),
		MaxNumberOfMessages: c.cfg.BatchSize,
		WaitTimeSeconds:     c.cfg.WaitTime,
	})
	if err != nil {
		return 0, fmt.Errorf("receive from %s: %w", c.cfg.QueueName, err)
	}

	handled := 0
	for _, msg := range out.Messages {
		if c.handle(ctx, url, msg) {
			handled++
		}
	}
	return handled, nil
}

// handle reports whether the message was removed from the queue.
func (c *Consumer) handle(ctx context.Context, url string, msg types.Message) bool {
	body := aws.ToString(msg.Body)

	var conf OrderConfirmation
	if err := json.Unmarshal([]byte(body), &conf); err != nil || conf.OrderID == "" {
		log.Printf("❌ Unreadable order message %s: %v", aws.ToString(msg.MessageId), err)
		if !c.deadLetter(ctx, body) {
			return false
		}
		return c.delete(ctx, url, msg)
	}

	subject, text, err := ConfirmationEmail(conf)
	if err != nil {
		log.Printf("❌ Failed to render confirmation for order %s: %v", conf.OrderID, err)
		return false
	}
	res, err := c.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(c.cfg.TopicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(text),
	})
	if err != nil {
		// Left on the queue; SQS redelivers and its redrive policy dead-letters.
		log.Printf("❌ Failed to publish confirmation for order %s: %v", conf.OrderID, err)
		return false
	}
	log.Printf("📧 Published confirmation for order %s (message %s)", conf.OrderID, aws.ToString(res.MessageId))
	return c.delete(ctx, url, msg)
}

func (c *Consumer) deadLetter(ctx context.Context, body string) bool {
	if c.cfg.DLQURL == "" {
		return true
	}
	if _, err := c.sqs.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.cfg.DLQURL),
		MessageBody: aws.String(body),
	}); err != nil {
		log.Printf("❌ Failed to move message to dead-letter queue: %v", err)
		return false
	}
	return true
}

func (c *Consumer) delete(ctx context.Context, url string, msg types.Message) bool {
	if _, err := c.sqs.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(url),
		ReceiptHandle: msg.ReceiptHandle,
	}); err != nil {
		log.Printf("❌ Failed to delete message %s: %v", aws.ToString(msg.MessageId), err)
		return false
	}
	return true
}

// ConfirmationEmail renders the subject and body sent to the customer.
func ConfirmationEmail(conf OrderConfirmation) (string, string, error) {
	items, err := json.MarshalIndent(conf.Items, "", "  ")
	if err != nil {
		return "", "", err
	}
	subject := "ShopSphere Order Confirmation - Order ID: " + conf.OrderID
	body := fmt.Sprintf(`Dear %s,

Your Order has been placed successfully.
Total Amount: $%s
Status: %s
Items: %s

Thank you for shopping.

Regards,
ShopSphere.
`, conf.Username, conf.TotalAmount.StringFixed(2), conf.Status, items)
	return subject, body, nil
}
