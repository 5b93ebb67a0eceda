package notifications

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMPusher delivers notifications through Firebase Cloud Messaging.
// Delivery is at-most-once and unacknowledged: callers treat every send
// as fire-and-forget.
type FCMPusher struct {
	client *messaging.Client
}

func NewFCMPusher(ctx context.Context, credentialsPath string) (*FCMPusher, error) {
	if credentialsPath == "" {
		return nil, errors.New("firebase credentials path is required")
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, err
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}

	return &FCMPusher{client: client}, nil
}

// Send pushes one message to one device token
func (p *FCMPusher) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	return err
}
