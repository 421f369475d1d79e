package services

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationEmail(email, token string) error
	SendOTPEmail(email, otp string) error
}

type emailService struct {
	dialer  *gomail.Dialer
	from    string
	baseURL string
	dryRun  bool
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, appBaseURL string, dryRun bool) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer:  dialer,
		from:    fromEmail,
		baseURL: strings.TrimRight(appBaseURL, "/"),
		dryRun:  dryRun,
	}
}

// VerificationLink is the front-end page that posts the token back to /api/auth/verify.
func (s *emailService) VerificationLink(token string) string {
	return fmt.Sprintf("%s/verify/%s", s.baseURL, url.PathEscape(token))
}

func (s *emailService) SendVerificationEmail(email, token string) error {
	link := s.VerificationLink(token)
	body := fmt.Sprintf(`
		<h2>Verify your email</h2>
		<p>Click the link below to verify your email address. The link is valid for 10 minutes.</p>
		<p><a href="%s">Verify email</a></p>
		<p>If you did not create an account, you can ignore this email.</p>
	`, link)

	if err := s.send(email, "Verify your email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (s *emailService) SendOTPEmail(email, otp string) error {
	body := fmt.Sprintf(`
		<p>Your OTP to reset the password is: <br> <b>%s</b>. It is valid for 10 minutes.</p>
	`, otp)

	if err := s.send(email, "OTP to reset the password", body); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (s *emailService) send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if s.dryRun {
		log.Printf("[email][dry-run] to=%s subject=%q", to, subject)
		return nil
	}
	return s.dialer.DialAndSend(m)
}
