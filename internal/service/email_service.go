package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends the transactional emails of a family account
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, familyName string) error
	SendPayoutReceipt(ctx context.Context, toEmail, childName string, amount int64, paidAt time.Time) error
}

// EmailService delivers family emails through Amazon SES. Without a sender
// address it is disabled and every send is a logged no-op.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
		debug:      debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// message is the content of one email before it is rendered as HTML and text
type message struct {
	heading   string
	lines     []string
	highlight string
	linkLabel string
	linkURL   string
}

const emailFooter = "This is an automated email from ChoreQuest. Please do not reply."

func (m message) text() string {
	var b strings.Builder
	for _, line := range m.lines {
		b.WriteString(line)
		b.WriteString("\n\n")
	}
	if m.highlight != "" {
		b.WriteString(m.highlight)
		b.WriteString("\n\n")
	}
	if m.linkURL != "" {
		fmt.Fprintf(&b, "%s: %s\n\n", m.linkLabel, m.linkURL)
	}
	b.WriteString("---\n")
	b.WriteString(emailFooter)
	b.WriteString("\n")
	return b.String()
}

func (m message) html() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head>`)
	b.WriteString(`<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&b, `<h1 style="background: #f5a623; color: white; padding: 20px; text-align: center;">%s</h1>`, html.EscapeString(m.heading))
	for _, line := range m.lines {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(line))
	}
	if m.highlight != "" {
		fmt.Fprintf(&b, `<p style="font-size: 28px; font-weight: bold; text-align: center;">%s</p>`, html.EscapeString(m.highlight))
	}
	if m.linkURL != "" {
		fmt.Fprintf(&b, `<p style="text-align: center;"><a href="%s">%s</a></p>`, html.EscapeString(m.linkURL), html.EscapeString(m.linkLabel))
	}
	fmt.Fprintf(&b, `<p style="font-size: 12px; color: #666; text-align: center;">%s</p>`, emailFooter)
	b.WriteString("</div></body></html>")
	return b.String()
}

// SendWelcomeEmail sends a welcome email to a newly registered family
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, familyName string) error {
	return s.send(ctx, toEmail, "Welcome to ChoreQuest!", message{
		heading: "Welcome to ChoreQuest!",
		lines: []string{
			fmt.Sprintf("Hi %s,", familyName),
			"Your family account is ready. Add a profile for each child, assign their chores and set up an allowance.",
			"Children can hatch a pet with the points they earn and take on the daily quiz.",
		},
		linkLabel: "Get started",
		linkURL:   s.appBaseURL + "/login",
	})
}

// SendPayoutReceipt tells the family how much cash a child was paid out
func (s *EmailService) SendPayoutReceipt(ctx context.Context, toEmail, childName string, amount int64, paidAt time.Time) error {
	formatted := FormatMoney(amount)
	return s.send(ctx, toEmail, fmt.Sprintf("Payout receipt: %s for %s", formatted, childName), message{
		heading: "Payout Receipt",
		lines: []string{
			fmt.Sprintf("%s was paid out on %s.", childName, paidAt.Format("2 January 2006")),
			"Their balance is now zero and the payout is listed in their history.",
		},
		highlight: formatted,
	})
}

// FormatMoney renders minor currency units with two decimals
func FormatMoney(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject string, m message) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): %q to %s", subject, toEmail)
		return nil
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}
	content := func(data string) *types.Content {
		return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
	}

	result, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination:      &types.Destination{ToAddresses: []string{toEmail}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: content(subject),
				Body:    &types.Body{Html: content(m.html()), Text: content(m.text())},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
