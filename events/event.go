package events

import (
	"context"
	"errors"
	"time"
)

// Event types
const (
	VendorRegistered      = "vendor.registered"
	SubscriptionSubmitted = "subscription.submitted"
	SubscriptionDecided   = "subscription.decided"
	ProfileDecided        = "profile.decided"
	VendorDeleted         = "vendor.deleted"
	WorkflowPartial       = "workflow.partial_failure"
)

// Event is a vendor lifecycle notification. Delivery is best effort and
// events are never read back by the workflow itself.
type Event struct {
	Type           string                 `json:"type"`
	VendorID       string                 `json:"vendorId,omitempty"`
	VendorType     string                 `json:"vendorType,omitempty"`
	SubscriptionID string                 `json:"subscriptionId,omitempty"`
	Status         string                 `json:"status,omitempty"`
	Data           map[string]interface{} `json:"data,omitempty"`
	OccurredAt     time.Time              `json:"occurredAt"`
}

// Publisher delivers events to some sink
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to every publisher and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
