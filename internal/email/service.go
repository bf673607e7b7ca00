package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/medcabinet/api/internal/config"
)

type Service interface {
	SendAppointmentConfirmation(to, patientName, doctorName string, start time.Time) error
	SendAppointmentCancellation(to, patientName, doctorName string, start time.Time) error
	SendAppointmentReminder(to, patientName, doctorName string, start time.Time) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentConfirmation(to, patientName, doctorName string, start time.Time) error {
	subject := "Your appointment is confirmed"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with Dr %s on %s at %s is confirmed.\n\nThe medical office",
		patientName, doctorName, start.Format("Monday, 2 January 2006"), start.Format("15:04"),
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendAppointmentCancellation(to, patientName, doctorName string, start time.Time) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour appointment with Dr %s on %s at %s has been cancelled.\n\nThe medical office",
		patientName, doctorName, start.Format("Monday, 2 January 2006"), start.Format("15:04"),
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendAppointmentReminder(to, patientName, doctorName string, start time.Time) error {
	subject := "Appointment reminder"
	body := fmt.Sprintf(
		"Hello %s,\n\nThis is a reminder for your appointment with Dr %s tomorrow at %s.\n\nThe medical office",
		patientName, doctorName, start.Format("15:04"),
	)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
