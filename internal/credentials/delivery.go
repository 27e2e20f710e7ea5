package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/pkg/errors"
)

// ResetDelivery hands a freshly issued reset token to its owner. The
// returned string is what the requester gets to see directly; out-of-band
// deliveries return "".
type ResetDelivery interface {
	Deliver(ctx context.Context, email, token string) (string, error)
}

// InlineDelivery surfaces the token to whoever asked for it. This keeps
// compatibility with the original flow but means anyone who knows an
// address can reset its password.
type InlineDelivery struct{}

func (InlineDelivery) Deliver(_ context.Context, _ string, token string) (string, error) {
	return token, nil
}

type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESDelivery e-mails the token through Amazon SES.
type SESDelivery struct {
	client sesSender
	sender string
}

func NewSESDelivery(ctx context.Context, region, sender string) (*SESDelivery, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "load AWS config")
	}
	return &SESDelivery{client: ses.NewFromConfig(cfg), sender: sender}, nil
}

func (d *SESDelivery) Deliver(ctx context.Context, email, token string) (string, error) {
	body := fmt.Sprintf("Your password reset token is: %s\n\nUse it on the Forgot Password page to set a new password.", token)
	input := &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String("Nutrivision password reset")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(d.sender),
	}
	if _, err := d.client.SendEmail(ctx, input); err != nil {
		return "", errors.Wrap(err, "send reset email")
	}
	return "", nil
}
