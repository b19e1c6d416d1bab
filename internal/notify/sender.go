package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"time"
)

// Sender delivers a one-time code to a recipient over a single transport.
type Sender interface {
	Transport() string
	Send(recipient, code string) error
}

// EmailSender delivers codes over SMTP.
type EmailSender struct {
	log  *log.Logger
	host string
	port int
	user string
	pass string
	from string
}

func NewEmailSender(logger *log.Logger, host string, port int, user, pass, from string) *EmailSender {
	return &EmailSender{
		log:  logger,
		host: host,
		port: port,
		user: user,
		pass: pass,
		from: from,
	}
}

func (s *EmailSender) Transport() string {
	return "email"
}

func (s *EmailSender) Send(recipient, code string) error {
	if s.host == "" {
		return fmt.Errorf("smtp host is not configured")
	}

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Your verification code\r\n\r\n"+
		"Your verification code is %s. It expires in 5 minutes.\r\n", s.from, recipient, code)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{recipient}, []byte(body)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	s.log.Printf("sent verification email to %s", recipient)
	return nil
}

// SMSSender delivers codes through an HTTP SMS gateway.
type SMSSender struct {
	log    *log.Logger
	client *http.Client
	url    string
	apiKey string
	sender string
}

func NewSMSSender(logger *log.Logger, url, apiKey, sender string) *SMSSender {
	return &SMSSender{
		log:    logger,
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
		apiKey: apiKey,
		sender: sender,
	}
}

func (s *SMSSender) Transport() string {
	return "sms"
}

func (s *SMSSender) Send(recipient, code string) error {
	if s.url == "" {
		return fmt.Errorf("sms gateway is not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"to":      recipient,
		"from":    s.sender,
		"message": fmt.Sprintf("Your verification code is %s. It expires in 5 minutes.", code),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sms gateway returned %d", resp.StatusCode)
	}

	s.log.Printf("sent verification sms to %s", recipient)
	return nil
}
