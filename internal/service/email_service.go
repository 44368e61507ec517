package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends notification emails via Amazon SES. When SES_FROM_EMAIL
// is not configured the service is created disabled and every send becomes a
// logged no-op.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendScoreNotification tells a parent that an activity was scored
func (s *EmailService) SendScoreNotification(ctx context.Context, toEmail, parentName, childName, activityTitle string, score, maxScore int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): score notification to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s earned %d points!", childName, score)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #5b3b8c; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.score { font-size: 32px; text-align: center; color: #5b3b8c; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Mission Scored!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>%s just finished "%s" and it has been scored:</p>
			<p class="score">%d / %d points</p>
			<p>Check the dashboard for the full week: %s/dashboard</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Creative Summer Academy. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, parentName, childName, activityTitle, score, maxScore, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

%s just finished "%s" and it has been scored: %d / %d points.

Check the dashboard for the full week: %s/dashboard

---
This is an automated email from Creative Summer Academy. Please do not reply.
`, parentName, childName, activityTitle, score, maxScore, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendReimbursementReceipt tells a parent that a child redeemed a reward
func (s *EmailService) SendReimbursementReceipt(ctx context.Context, toEmail, parentName, childName, itemName string, pointsCost, remainingPoints int) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): reimbursement receipt to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("%s redeemed a reward: %s", childName, itemName)
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #5b3b8c; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Reward Redeemed</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>%s just spent <strong>%d points</strong> on <strong>%s</strong>.</p>
			<p>Remaining balance: %d points.</p>
			<p>The next redemption unlocks on Friday.</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Creative Summer Academy. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, parentName, childName, pointsCost, itemName, remainingPoints)

	textBody := fmt.Sprintf(`Hi %s,

%s just spent %d points on %s.
Remaining balance: %d points.

The next redemption unlocks on Friday.

---
This is an automated email from Creative Summer Academy. Please do not reply.
`, parentName, childName, pointsCost, itemName, remainingPoints)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
