package services

import (
	"context"
	"fmt"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/chachabrian/mooveit-parcels/internal/events"
	"github.com/chachabrian/mooveit-parcels/pkg/utils"
)

// Firebase bundles the Admin SDK clients the API uses.
type Firebase struct {
	App       *firebase.App
	Auth      *auth.Client
	Messaging *messaging.Client
}

// NewFirebase initializes the Firebase Admin SDK from a service account file.
func NewFirebase(ctx context.Context, serviceAccountPath string) (*Firebase, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting auth client: %w", err)
	}
	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return &Firebase{App: app, Auth: authClient, Messaging: messagingClient}, nil
}

// idTokenVerifier is the part of *auth.Client used to check ID tokens.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier accepts Firebase ID tokens carrying a verified email.
type FirebaseVerifier struct {
	client idTokenVerifier
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, raw string) (utils.TokenClaims, error) {
	token, err := v.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return utils.TokenClaims{}, utils.ErrInvalidToken
	}
	email, _ := token.Claims["email"].(string)
	if email == "" {
		return utils.TokenClaims{}, utils.ErrInvalidToken
	}
	// Email/password accounts can be created for any address; only a
	// verified address proves the caller owns it.
	if verified, _ := token.Claims["email_verified"].(bool); !verified {
		return utils.TokenClaims{}, utils.ErrInvalidToken
	}
	name, _ := token.Claims["name"].(string)
	return utils.TokenClaims{Email: email, Name: name}, nil
}

// TopicFor is the FCM topic that followers of a parcel subscribe to.
func TopicFor(trackingID string) string {
	return "parcel-" + trackingID
}

// topicSender is the part of *messaging.Client used for pushes.
type topicSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMPublisher pushes parcel events to the parcel's FCM topic.
type FCMPublisher struct {
	client topicSender
}

func NewFCMPublisher(client *messaging.Client) *FCMPublisher {
	return &FCMPublisher{client: client}
}

func (p *FCMPublisher) Name() string { return "fcm" }

func (p *FCMPublisher) Publish(ctx context.Context, e events.ParcelEvent) error {
	title, body, ok := notificationText(e)
	if !ok {
		return nil
	}
	_, err := p.client.Send(ctx, &messaging.Message{
		Topic: TopicFor(e.TrackingID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":           string(e.Type),
			"parcelId":       strconv.FormatUint(uint64(e.ParcelID), 10),
			"trackingId":     e.TrackingID,
			"status":         e.Status,
			"notificationId": fmt.Sprintf("%s_%d", e.Type, e.ParcelID),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "mooveit_parcels",
				DefaultSound: true,
				Tag:          e.TrackingID,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("error sending topic message: %w", err)
	}
	return nil
}

func notificationText(e events.ParcelEvent) (title, body string, ok bool) {
	name := e.ParcelName
	if name == "" {
		name = e.TrackingID
	}
	switch e.Type {
	case events.ParcelPaid:
		return "Payment received", fmt.Sprintf("%s is paid and waiting for a rider", name), true
	case events.ParcelAssigned:
		return "Rider assigned", fmt.Sprintf("A rider has been assigned to %s", name), true
	case events.ParcelPicked:
		return "Parcel on the way", fmt.Sprintf("%s has been picked up", name), true
	case events.ParcelDelivered:
		return "Parcel delivered", fmt.Sprintf("%s has been delivered", name), true
	default:
		return "", "", false
	}
}
