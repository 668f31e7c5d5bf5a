package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const sesCharset = "UTF-8"

// SESAPI is the part of the SES v2 client the sender needs
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES v2
type SESSender struct {
	client SESAPI
	from   From
	logger Logger
}

// NewSESClient builds an SES v2 client from the default AWS credential chain
func NewSESClient(ctx context.Context, region string) (*sesv2.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("email: load aws config: %w", err)
	}
	return sesv2.NewFromConfig(cfg), nil
}

// NewSESSender returns nil without a client
func NewSESSender(client SESAPI, from From, logger Logger) *SESSender {
	if client == nil {
		return nil
	}
	return &SESSender{client: client, from: from, logger: logger}
}

// Send sends an email via AWS SES
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	if s == nil || s.client == nil {
		return ErrNotConfigured
	}

	output, err := s.client.SendEmail(ctx, s.buildInput(msg))
	if err != nil {
		s.logger.Error("SES send to %s failed: %v", msg.To, err)
		return fmt.Errorf("%w: ses: %v", ErrSendFailed, err)
	}

	s.logger.Info("email %q sent to %s via SES, message_id=%s", msg.Subject, msg.To, aws.ToString(output.MessageId))
	return nil
}

func (s *SESSender) buildInput(msg Message) *sesv2.SendEmailInput {
	fromAddress := s.from.Email
	if s.from.Name != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.from.Name, s.from.Email)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(sesCharset)},
				Body:    &types.Body{},
			},
		},
	}

	if msg.Text != "" {
		input.Content.Simple.Body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(sesCharset)}
	}
	if msg.HTML != "" {
		input.Content.Simple.Body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(sesCharset)}
	}
	return input
}

var _ Sender = (*SESSender)(nil)
