package utils

import (
	"fmt"
	"log/slog"
	"net/smtp"
)

type SMTPClient struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewSMTPClient(host string, port int, user, pass, from string) *SMTPClient {
	if port == 0 {
		port = 587
	}
	return &SMTPClient{Host: host, Port: port, User: user, Password: pass, From: from}
}

func (s *SMTPClient) Send(to, subject, body string) error {
	if s == nil || s.Host == "" || s.User == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	msg := []byte("From: " + s.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body + "\r\n")
	return smtp.SendMail(addr, auth, s.From, []string{to}, msg)
}

// LogMailer writes outgoing mail to the logger instead of sending it. For
// development only: message bodies carry verification codes.
type LogMailer struct {
	Logger *slog.Logger
}

func (l *LogMailer) Send(to, subject, body string) error {
	l.Logger.Info("mail not sent, smtp not configured", "to", to, "subject", subject, "body", body)
	return nil
}
