package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chachabrian/mooveit-parcels/internal/config"
	"github.com/chachabrian/mooveit-parcels/internal/events"
)

// SMSPublisher texts the parcel receiver through Africa's Talking when a
// rider is assigned and when the parcel is delivered.
type SMSPublisher struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewSMSPublisher(cfg config.SMSConfig) *SMSPublisher {
	return &SMSPublisher{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (p *SMSPublisher) Name() string { return "sms" }

func (p *SMSPublisher) Publish(ctx context.Context, e events.ParcelEvent) error {
	if e.Receiver == "" {
		return nil
	}
	var msg string
	switch e.Type {
	case events.ParcelAssigned:
		msg = fmt.Sprintf("A parcel (%s) is being delivered to you by %s. Track it with id %s.",
			e.ParcelName, riderLabel(e), e.TrackingID)
	case events.ParcelDelivered:
		msg = fmt.Sprintf("Your parcel %s has been delivered. Thank you for using MooveIt.", e.TrackingID)
	default:
		return nil
	}
	return p.send(ctx, msg, []string{e.Receiver})
}

func riderLabel(e events.ParcelEvent) string {
	if e.RiderName != "" {
		return e.RiderName
	}
	return "our rider"
}

func (p *SMSPublisher) send(ctx context.Context, message string, recipients []string) error {
	data := url.Values{}
	data.Set("username", p.cfg.Username)
	data.Set("to", strings.Join(recipients, ","))
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.Endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", p.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}
	return nil
}
