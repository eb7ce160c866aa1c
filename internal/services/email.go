package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"github.com/chachabrian/mooveit-parcels/internal/config"
	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

const companyName = "MooveIt Limited"

// smtpTimeout bounds a send whose context carries no deadline.
const smtpTimeout = 30 * time.Second

const emailHeader = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h2 style="color: #4CAF50; text-align: center;">MooveIt</h2>
`

const emailFooter = `
		<div style="text-align: center; margin-top: 20px; font-size: 12px; color: #666;">
			<p>This is an automated message, please do not reply to this email.</p>
		</div>
	</div>
</body>
</html>
`

var deliveredEmail = template.Must(template.New("delivered").Parse(emailHeader + `
		<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
			<h1 style="color: #2c3e50; text-align: center;">Parcel Delivered</h1>
			<p>Hello,</p>
			<p>Your parcel <strong>{{.ParcelName}}</strong> (tracking id <strong>{{.TrackingID}}</strong>) has been delivered.</p>
			<div style="text-align: center; margin: 30px 0;">
				<a href="{{.TrackingURL}}" style="background-color: #4CAF50; color: white; padding: 12px 25px; text-decoration: none; border-radius: 5px;">View Tracking History</a>
			</div>
			<p>Best regards,<br>The MooveIt Team</p>
		</div>` + emailFooter))

var codeEmail = template.Must(template.New("code").Parse(emailHeader + `
		<div style="background-color: #f9f9f9; padding: 20px; border-radius: 5px;">
			<h1 style="color: #2c3e50; text-align: center;">Your Verification Code</h1>
			<p>Use this code to set your MooveIt password:</p>
			<p style="font-size: 28px; letter-spacing: 6px; text-align: center;"><strong>{{.Code}}</strong></p>
			<p>The code expires in {{.Minutes}} minutes. If you did not ask for it, ignore this email.</p>
		</div>` + emailFooter))

type sendMailFunc func(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailPublisher mails the parcel creator when the parcel is delivered, and
// sends password setup codes.
type EmailPublisher struct {
	cfg      config.SMTPConfig
	baseURL  string
	sendMail sendMailFunc
}

func NewEmailPublisher(cfg config.SMTPConfig, baseURL string) *EmailPublisher {
	return &EmailPublisher{cfg: cfg, baseURL: strings.TrimRight(baseURL, "/"), sendMail: sendMail}
}

func (p *EmailPublisher) Name() string { return "email" }

func (p *EmailPublisher) Publish(ctx context.Context, e events.ParcelEvent) error {
	if e.Type != events.ParcelDelivered || e.CreatedBy == "" {
		return nil
	}
	var body bytes.Buffer
	err := deliveredEmail.Execute(&body, map[string]string{
		"ParcelName":  e.ParcelName,
		"TrackingID":  e.TrackingID,
		"TrackingURL": p.baseURL + "/tracking/" + url.PathEscape(e.TrackingID),
	})
	if err != nil {
		return fmt.Errorf("render delivered email: %w", err)
	}
	return p.send(ctx, []string{e.CreatedBy}, "Parcel Delivered - MooveIt", body.String())
}

// SendCode mails a one-time password setup code.
func (p *EmailPublisher) SendCode(ctx context.Context, email, code string) error {
	var body bytes.Buffer
	err := codeEmail.Execute(&body, map[string]any{
		"Code":    code,
		"Minutes": int(utils.OTPExpiration / time.Minute),
	})
	if err != nil {
		return fmt.Errorf("render code email: %w", err)
	}
	return p.send(ctx, []string{email}, "Your MooveIt verification code", body.String())
}

func (p *EmailPublisher) send(ctx context.Context, to []string, subject, body string) error {
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", companyName, p.cfg.From)},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
		{"X-Mailer", "MooveIt-Mailer"},
	}

	var message strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	auth := smtp.PlainAuth("", p.cfg.From, p.cfg.Password, p.cfg.Host)
	return p.sendMail(ctx, net.JoinHostPort(p.cfg.Host, p.cfg.Port), auth, p.cfg.From, to, []byte(message.String()))
}

// sendMail is smtp.SendMail with the connection bound to ctx, so a stalled
// server cannot hold the caller past its deadline.
func sendMail(ctx context.Context, addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, smtpTimeout)
		defer cancel()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(a); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}
