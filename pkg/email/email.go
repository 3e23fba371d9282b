// pkg/email/email.go
package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

const resendEndpoint = "https://api.resend.com/emails"

type EmailService struct {
	apiKey    string
	from      string
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// Template data structures
type ApplicationReceivedData struct {
	TenantName   string
	PropertyName string
	MoveInDate   string
}

type ViewingScheduledData struct {
	TenantName    string
	PropertyName  string
	ScheduledDate string
	ScheduledTime string
	ContactPerson string
	ContactPhone  string
}

type LeaseSentData struct {
	TenantName   string
	PropertyName string
	StartDate    string
	EndDate      string
	MonthlyRent  float64
	Deposit      float64
}

type MoveOutConfirmationData struct {
	TenantName      string
	PropertyName    string
	MoveOutDate     string
	DepositReturned float64
}

type LeaseExpiryWarningData struct {
	LandlordName string
	TenantName   string
	PropertyName string
	EndDate      time.Time
	DaysLeft     int
}

func NewEmailService(apiKey, from string) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %v", err)
	}

	return &EmailService{
		apiKey:    apiKey,
		from:      from,
		templates: templates,
	}, nil
}

func (s *EmailService) send(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("could not render template %s: %v", templateName, err)
	}

	payload, err := json.Marshal(EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, resendEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("resend returned %d: %s", resp.StatusCode, string(raw))
	}

	log.Printf("Sent %s email to %s", templateName, to)
	return nil
}

func (s *EmailService) SendApplicationReceivedEmail(to string, data ApplicationReceivedData) error {
	return s.send(to, "We received your application", "application_received.html", data)
}

func (s *EmailService) SendViewingScheduledEmail(to string, data ViewingScheduledData) error {
	return s.send(to, "Your property viewing is scheduled", "viewing_scheduled.html", data)
}

func (s *EmailService) SendLeaseSentEmail(to string, data LeaseSentData) error {
	return s.send(to, "Your lease is ready to sign", "lease_sent.html", data)
}

func (s *EmailService) SendMoveOutConfirmationEmail(to string, data MoveOutConfirmationData) error {
	return s.send(to, "Move-out processed", "moveout_confirmation.html", data)
}

func (s *EmailService) SendLeaseExpiryWarningEmail(to string, data LeaseExpiryWarningData) error {
	subject := fmt.Sprintf("Lease expiring in %d days", data.DaysLeft)
	return s.send(to, subject, "lease_expiry_warning.html", data)
}
