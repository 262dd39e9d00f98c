package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"

	"studenthub-be/internal/entity"
)

type IEmailService interface {
	SendLeaveDecision(toEmail, studentName string, request *entity.LeaveRequest) error
	SendWelcome(toEmail, studentName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendLeaveDecision(toEmail, studentName string, request *entity.LeaveRequest) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)

	verdict := "approved"
	color := "#4CAF50"
	if request.Status == entity.LeaveStatusRejected {
		verdict = "rejected"
		color = "#D9534F"
	}
	m.SetHeader("Subject", fmt.Sprintf("Your leave application has been %s", verdict))

	detailLink := fmt.Sprintf("%s/leave/%s", s.frontendURL, request.Id)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hi %s,</h2>
			<p>Your %s leave application (%s to %s) has been
			<strong style="color: %s;">%s</strong>.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View application</a>
			<p>If you have questions, contact the student services office.</p>
		</div>
	`, studentName, request.Type,
		request.StartDate.Format("2 Jan 2006"), request.EndDate.Format("2 Jan 2006"),
		color, verdict, detailLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send leave decision to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Leave decision sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendWelcome(toEmail, studentName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to StudentHub")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to StudentHub, %s!</h2>
			<p>Your account is ready. You can now submit leave applications and chat with the StudentHub Assistant.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open StudentHub</a>
		</div>
	`, studentName, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send welcome to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Welcome sent to %s\n", toEmail)
	return nil
}
