package app

import (
	"context"
	"fmt"
	"net/http"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/dig"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/config"
	"ecommerce-api/internal/http/handlers"
	"ecommerce-api/internal/logx"
	"ecommerce-api/internal/mailer"
	"ecommerce-api/internal/service/image"
	"ecommerce-api/internal/service/order"
	"ecommerce-api/internal/storage"
	"ecommerce-api/internal/transport/kafka"
)

// namedCloser is released by the runner after the HTTP server stops.
type namedCloser struct {
	Name  string
	Close func() error
}

// uploadsHandler serves locally stored images. Nil for remote storage.
type uploadsHandler http.Handler

type storageOut struct {
	dig.Out

	Store   image.ObjectStore
	URL     handlers.URLFunc
	Uploads uploadsHandler
	Closer  namedCloser `group:"closers"`
}

func provideStorage(ctx context.Context, cfg *config.Config, logger logx.Logger) (storageOut, error) {
	sc := cfg.Storage
	switch sc.Driver {
	case config.StorageGCS:
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return storageOut{}, fmt.Errorf("gcs client: %w", err)
		}
		store := storage.NewGCS(client, sc.GCSBucket, sc.PublicURL)
		logger.Info("image storage ready", logx.String("driver", sc.Driver), logx.String("bucket", sc.GCSBucket))
		return storageOut{
			Store:  store,
			URL:    store.URL,
			Closer: namedCloser{Name: "gcs", Close: store.Close},
		}, nil
	default:
		store, err := storage.NewLocal(sc.LocalDir, sc.PublicURL)
		if err != nil {
			return storageOut{}, err
		}
		logger.Info("image storage ready", logx.String("driver", sc.Driver), logx.String("dir", store.Dir()))
		return storageOut{
			Store:   store,
			URL:     store.URL,
			Uploads: http.FileServer(http.Dir(store.Dir())),
			Closer:  namedCloser{Name: "storage"},
		}, nil
	}
}

func provideMailer(cfg *config.Config, logger logx.Logger) mailer.Mailer {
	if cfg.Mail.SendgridAPIKey == "" {
		logger.Warn("SENDGRID_API_KEY is empty, mail is logged instead of sent")
		return mailer.NewLog(logger)
	}
	return mailer.NewSendGrid(cfg.Mail.SendgridAPIKey, cfg.Mail.From, logger)
}

type publisherOut struct {
	dig.Out

	Publisher order.EventPublisher
	Closer    namedCloser `group:"closers"`
}

func providePublisher(cfg *config.Config, logger logx.Logger) (publisherOut, error) {
	p, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrdersTopic, logger)
	if err != nil {
		return publisherOut{}, err
	}
	if p == nil {
		logger.Info("kafka brokers not configured, order events are dropped")
		return publisherOut{Publisher: order.NopPublisher{}, Closer: namedCloser{Name: "kafka"}}, nil
	}
	return publisherOut{Publisher: p, Closer: namedCloser{Name: "kafka", Close: p.Close}}, nil
}

func provideTokenManager(cfg *config.Config) *auth.TokenManager {
	return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
}
