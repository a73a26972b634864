package service

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// Notification is the payload shown by the browser's service worker
type Notification struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Icon  string         `json:"icon,omitempty"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

// Notifier delivers notifications to profiles. Delivery is best effort.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int64, n Notification)
	NotifyParents(ctx context.Context, familyID int64, n Notification)
}

type pushSender func(ctx context.Context, payload []byte, sub *webpush.Subscription, opts *webpush.Options) (*http.Response, error)

// NotificationService sends web push notifications to registered browsers
type NotificationService struct {
	subs    *repository.PushRepository
	users   *repository.UserRepository
	options *webpush.Options
	enabled bool
	send    pushSender
}

// NewNotificationService creates a push notifier. Missing VAPID keys disable sending.
func NewNotificationService(subs *repository.PushRepository, users *repository.UserRepository, publicKey, privateKey, subject string) *NotificationService {
	enabled := publicKey != "" && privateKey != "" && subject != ""
	if !enabled {
		log.Println("Web push disabled: VAPID keys not configured")
	}
	return &NotificationService{
		subs:  subs,
		users: users,
		options: &webpush.Options{
			Subscriber:      subject,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             30,
		},
		enabled: enabled,
		send:    webpush.SendNotificationWithContext,
	}
}

// IsEnabled returns whether push is configured
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// PublicKey is the VAPID key browsers subscribe with
func (s *NotificationService) PublicKey() string {
	return s.options.VAPIDPublicKey
}

// Subscribe registers a browser endpoint for the acting profile
func (s *NotificationService) Subscribe(actor models.Actor, endpoint, p256dh, auth string) error {
	if endpoint == "" || p256dh == "" || auth == "" {
		return validation.ValidationError{Field: "subscription", Message: "endpoint and keys are required"}
	}
	return s.subs.SaveSubscription(&models.PushSubscription{
		UserID:   actor.UserID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	})
}

// Unsubscribe removes a browser endpoint
func (s *NotificationService) Unsubscribe(endpoint string) error {
	return s.subs.DeleteSubscription(endpoint)
}

// NotifyParents sends n to every parent profile of a family
func (s *NotificationService) NotifyParents(ctx context.Context, familyID int64, n Notification) {
	if s == nil || !s.enabled {
		return
	}
	parents, err := s.users.ListFamilyUsersByRole(familyID, models.RoleParent)
	if err != nil {
		log.Printf("Failed to load parents for notification: %v", err)
		return
	}
	for _, p := range parents {
		s.NotifyUser(ctx, p.ID, n)
	}
}

// NotifyUser sends n to every endpoint the profile registered, pruning dead ones
func (s *NotificationService) NotifyUser(ctx context.Context, userID int64, n Notification) {
	if s == nil || !s.enabled {
		return
	}

	subs, err := s.subs.ListUserSubscriptions(userID)
	if err != nil {
		log.Printf("Failed to load push subscriptions for user %d: %v", userID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		log.Printf("Failed to marshal push payload: %v", err)
		return
	}

	sent := 0
	for _, sub := range subs {
		subscription := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}

		resp, err := s.send(ctx, payload, subscription, s.options)
		if resp != nil {
			if resp.StatusCode >= 400 {
				body, _ := io.ReadAll(resp.Body)
				log.Printf("Push service error response (%d): %s", resp.StatusCode, string(body))
			}
			resp.Body.Close()

			// 404/410: the browser dropped the subscription. 403: it was made with other VAPID keys.
			switch resp.StatusCode {
			case http.StatusNotFound, http.StatusGone, http.StatusForbidden:
				if err := s.subs.DeleteSubscription(sub.Endpoint); err != nil {
					log.Printf("Failed to remove stale subscription: %v", err)
				} else {
					log.Printf("Removed stale push subscription for user %d", userID)
				}
				continue
			}
		}
		if err != nil {
			log.Printf("Failed to send push to user %d: %v", userID, err)
			continue
		}
		sent++
	}

	log.Printf("Push notification %q: user=%d subscriptions=%d sent=%d", n.Tag, userID, len(subs), sent)
}
