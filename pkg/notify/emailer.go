package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailerInterface sends a plain-text email. The consumer depends on this,
// not on the SES client, so tests can capture sends.
type EmailerInterface interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SESEmailer sends through Amazon SES v2 with the shared AWS credential
// chain.
type SESEmailer struct {
	client *sesv2.Client
	from   string
}

func NewSESEmailer(ctx context.Context, fromAddress string) (*SESEmailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("notify.NewSESEmailer: %w", err)
	}
	return &SESEmailer{client: sesv2.NewFromConfig(cfg), from: fromAddress}, nil
}

func (e *SESEmailer) Send(ctx context.Context, to, subject, body string) error {
	_, err := e.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.from),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("notify.Send: %w", err)
	}
	return nil
}
