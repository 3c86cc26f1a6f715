package Notifications

import (
	"context"
	"fmt"

	"Flotilla/Models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// Pusher forwards stored notifications to the user's registered devices
// through Firebase Cloud Messaging. Push is best-effort: delivery failures
// are logged, never propagated.
type Pusher struct {
	client *messaging.Client
}

func NewPusher(credentialsFile string) (*Pusher, error) {
	ctx := context.Background()
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initializing Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting Messaging client: %w", err)
	}
	log.Info("Firebase push notifications enabled")
	return &Pusher{client: client}, nil
}

func (p *Pusher) Send(db *gorm.DB, userID uint, message string) {
	var tokens []Models.FCMToken
	if err := db.Where("user_id = ?", userID).Find(&tokens).Error; err != nil {
		log.Errorf("push: loading tokens for user %d: %v", userID, err)
		return
	}

	for _, token := range tokens {
		msg := &messaging.Message{
			Token: token.Value,
			Notification: &messaging.Notification{
				Title: "Flotilla",
				Body:  message,
			},
		}
		if _, err := p.client.Send(context.Background(), msg); err != nil {
			log.Errorf("push: sending to user %d: %v", userID, err)
		}
	}
}
