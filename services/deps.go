package services

import (
	"context"
	"time"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/logger"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier sends a plain text message to a vendor
type Notifier interface {
	Send(to, subject, body string) error
}

// Deps is shared by every service
type Deps struct {
	Stores    Stores
	Logger    *zap.Logger
	Publisher events.Publisher
	Reporter  logger.Reporter
	Notifier  Notifier
	Validate  *validator.Validate
	Now       func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d *Deps) log() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *Deps) validate(v interface{}) error {
	if d.Validate == nil {
		d.Validate = validator.New()
	}
	if err := d.Validate.Struct(v); err != nil {
		return FromValidator(err)
	}
	return nil
}

// publish is fire and forget; failures are logged only.
func (d *Deps) publish(ctx context.Context, e events.Event) {
	if d.Publisher == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = d.now()
	}
	if err := d.Publisher.Publish(ctx, e); err != nil {
		d.log().Warn("Failed to publish event", zap.String("type", e.Type), zap.Error(err))
	}
}

func (d *Deps) notify(to, subject, body string) {
	if d.Notifier == nil || to == "" {
		return
	}
	if err := d.Notifier.Send(to, subject, body); err != nil {
		d.log().Warn("Failed to send vendor notification", zap.String("to", to), zap.Error(err))
	}
}

func (d *Deps) report(err error, tags map[string]string) {
	if d.Reporter != nil {
		d.Reporter.Report(err, tags)
	}
}

func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid(field, "must be a valid id")
	}
	return id, nil
}

func requireCategory(category string) error {
	if models.IsCategory(category) {
		return nil
	}
	return invalid("vendorType", "must be one of [album services product proposal]")
}
