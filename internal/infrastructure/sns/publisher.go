package sns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-api-registration/internal/infrastructure/notify"
)

const eventEmailConfirmation = "email_confirmation"

// PublishAPI is the subset of *sns.Client used by Publisher.
type PublishAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// confirmationEvent is the message body delivered to topic subscribers,
// which are responsible for rendering and sending the actual email.
type confirmationEvent struct {
	Event string `json:"event"`
	Email string `json:"email"`
	Token string `json:"token"`
	Link  string `json:"link"`
}

// Publisher hands confirmation requests to an SNS topic.
type Publisher struct {
	client   PublishAPI
	topicARN string
	baseURL  string
}

// NewClient creates an SNS client, pointed at endpoint when one is set (LocalStack).
func NewClient(awsCfg aws.Config, endpoint string) *sns.Client {
	var opts []func(*sns.Options)
	if endpoint != "" {
		opts = append(opts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	return sns.NewFromConfig(awsCfg, opts...)
}

func NewPublisher(client PublishAPI, topicARN, baseURL string) *Publisher {
	return &Publisher{client: client, topicARN: topicARN, baseURL: baseURL}
}

func (p *Publisher) NotifyConfirmation(ctx context.Context, to, token string) error {
	body, err := json.Marshal(confirmationEvent{
		Event: eventEmailConfirmation,
		Email: to,
		Token: token,
		Link:  notify.ConfirmationLink(p.baseURL, token),
	})
	if err != nil {
		return fmt.Errorf("marshal confirmation event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(eventEmailConfirmation)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish confirmation for %s: %w", to, err)
	}
	return nil
}
