package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/config"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/dto"
	"github.com/ahmetcoskunkizilkaya/turkamerica-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const pushConcurrency = 16

var (
	ErrPushNotConfigured   = errors.New("push notifications are not configured")
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// PushSender delivers one payload to one subscription and reports the push
// service's HTTP status.
type PushSender interface {
	Send(ctx context.Context, sub *models.Subscription, payload []byte) (int, error)
}

// WebPushSender signs requests with the server's VAPID keys.
type WebPushSender struct {
	cfg    *config.Config
	client *http.Client
}

func NewWebPushSender(cfg *config.Config) *WebPushSender {
	return &WebPushSender{cfg: cfg, client: &http.Client{Timeout: 10 * time.Second}}
}

func (w *WebPushSender) Send(ctx context.Context, sub *models.Subscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.Keys.P256dh, Auth: sub.Keys.Auth},
	}, &webpush.Options{
		HTTPClient:      w.client,
		Subscriber:      w.cfg.VAPIDSubject,
		VAPIDPublicKey:  w.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: w.cfg.VAPIDPrivateKey,
		TTL:             60 * 60 * 24,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

type NotificationService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender PushSender
}

func NewNotificationService(db *gorm.DB, cfg *config.Config, sender PushSender) *NotificationService {
	return &NotificationService{db: db, cfg: cfg, sender: sender}
}

func (s *NotificationService) PublicKey() string {
	return s.cfg.VAPIDPublicKey
}

// Subscribe registers an endpoint. It reports created=false when the endpoint
// was already known, in which case only a missing user id is filled in.
func (s *NotificationService) Subscribe(ctx context.Context, req *dto.SubscribeRequest, userID *uuid.UUID, userAgent string) (bool, error) {
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		return false, ErrInvalidSubscription
	}
	if userID == nil && req.UserID != "" {
		if id, err := uuid.Parse(req.UserID); err == nil {
			userID = &id
		}
	}

	var existing models.Subscription
	err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&existing).Error
	switch {
	case err == nil:
		if existing.UserID == nil && userID != nil {
			if err := s.db.WithContext(ctx).Model(&existing).Update("user_id", *userID).Error; err != nil {
				return false, fmt.Errorf("failed to update subscription: %w", err)
			}
		}
		return false, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return false, fmt.Errorf("failed to look up subscription: %w", err)
	}

	if req.Keys.P256dh == "" || req.Keys.Auth == "" {
		return false, ErrInvalidSubscription
	}
	sub := &models.Subscription{
		UserID:    userID,
		Endpoint:  endpoint,
		Keys:      models.SubscriptionKeys{P256dh: req.Keys.P256dh, Auth: req.Keys.Auth},
		UserAgent: userAgent,
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// A concurrent subscribe for the same endpoint won.
			return false, nil
		}
		return false, fmt.Errorf("failed to create subscription: %w", err)
	}
	return true, nil
}

// Send pushes payload to every subscription. Endpoints the push service
// reports as gone (404/410) are deleted; other failures are counted and logged.
func (s *NotificationService) Send(ctx context.Context, payload *dto.PushPayload) (*dto.SendResult, error) {
	if !s.cfg.PushConfigured() || s.sender == nil {
		return nil, ErrPushNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	var subs []models.Subscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to load subscriptions: %w", err)
	}

	var (
		mu     sync.Mutex
		gone   []uuid.UUID
		result = &dto.SendResult{Total: len(subs)}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pushConcurrency)
	for i := range subs {
		sub := &subs[i]
		g.Go(func() error {
			status, err := s.sender.Send(gctx, sub, body)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				result.Failed++
				slog.Warn("push send failed", "subscription_id", sub.ID, "error", err)
			case status == http.StatusNotFound || status == http.StatusGone:
				gone = append(gone, sub.ID)
			case status >= 400:
				result.Failed++
				slog.Warn("push rejected", "subscription_id", sub.ID, "status", status)
			default:
				result.Sent++
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(gone) > 0 {
		res := s.db.WithContext(ctx).Where("id IN ?", gone).Delete(&models.Subscription{})
		if res.Error != nil {
			slog.Error("failed to remove expired subscriptions", "error", res.Error, "count", len(gone))
		} else {
			result.Removed = int(res.RowsAffected)
		}
	}
	return result, nil
}
