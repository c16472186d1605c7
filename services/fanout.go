package services

import (
	"context"
	"fmt"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fanout applies the steps of one intent in order. Steps already recorded as
// completed are skipped so the same runner drives first runs and replays.
type fanout struct {
	d         *Deps
	intent    *models.WorkflowIntent
	persisted bool
}

// begin records the intent before any of its steps run. Intent bookkeeping
// is best effort: when it cannot be stored the fan-out still proceeds.
func (d *Deps) begin(ctx context.Context, intent *models.WorkflowIntent) *fanout {
	now := d.now()
	intent.ID = primitive.NewObjectID()
	intent.OperationID = uuid.NewString()
	intent.State = models.IntentStarted
	intent.Attempts = 1
	intent.CreatedAt = now
	intent.UpdatedAt = now
	if intent.CompletedSteps == nil {
		intent.CompletedSteps = []string{}
	}

	f := &fanout{d: d, intent: intent}
	if d.Stores.Intents == nil {
		return f
	}
	if err := d.Stores.Intents.Create(ctx, intent); err != nil {
		d.log().Warn("Failed to record workflow intent",
			zap.String("kind", intent.Kind),
			zap.String("operationId", intent.OperationID),
			zap.Error(err))
		return f
	}
	f.persisted = true
	return f
}

// resume wraps an intent loaded from the store for replay
func (d *Deps) resume(intent *models.WorkflowIntent) *fanout {
	return &fanout{d: d, intent: intent, persisted: true}
}

func (f *fanout) step(ctx context.Context, name string, apply func(context.Context) error) error {
	if f.intent.Done(name) {
		return nil
	}
	if err := apply(ctx); err != nil {
		return f.fail(ctx, name, err)
	}

	f.intent.CompletedSteps = append(f.intent.CompletedSteps, name)
	if f.persisted {
		if err := f.d.Stores.Intents.MarkStep(ctx, f.intent.ID, name); err != nil {
			f.d.log().Warn("Failed to record workflow step",
				zap.String("operationId", f.intent.OperationID),
				zap.String("step", name),
				zap.Error(err))
		}
	}
	return nil
}

// fail ends the fan-out at step. With nothing applied yet the intent is
// abandoned and err is returned as is; otherwise the caller gets a
// PartialFailureError and the intent stays eligible for replay.
func (f *fanout) fail(ctx context.Context, step string, err error) error {
	log := f.d.log().With(
		zap.String("kind", f.intent.Kind),
		zap.String("operationId", f.intent.OperationID),
		zap.String("vendorId", f.intent.VendorID.Hex()),
		zap.String("step", step),
	)

	if len(f.intent.CompletedSteps) == 0 {
		if f.persisted {
			if aerr := f.d.Stores.Intents.Abandon(ctx, f.intent.ID, err.Error()); aerr != nil {
				log.Warn("Failed to abandon workflow intent", zap.Error(aerr))
			}
		}
		return err
	}

	if f.persisted {
		if ferr := f.d.Stores.Intents.Fail(ctx, f.intent.ID, step, err.Error()); ferr != nil {
			log.Warn("Failed to record workflow failure", zap.Error(ferr))
		}
	}

	completed := append([]string(nil), f.intent.CompletedSteps...)
	pf := &PartialFailureError{
		Operation:   f.intent.Kind,
		OperationID: f.intent.OperationID,
		Step:        step,
		Completed:   completed,
		Err:         err,
	}
	log.Error("Workflow stopped after partial fan-out", zap.Strings("completed", completed), zap.Error(err))
	f.d.report(pf, map[string]string{
		"kind":        f.intent.Kind,
		"operationId": f.intent.OperationID,
		"step":        step,
	})
	f.d.publish(ctx, events.Event{
		Type:           events.WorkflowPartial,
		VendorID:       f.intent.VendorID.Hex(),
		VendorType:     f.intent.VendorType,
		SubscriptionID: hexOrEmpty(f.intent.SubscriptionID),
		Data: map[string]interface{}{
			"kind":        f.intent.Kind,
			"operationId": f.intent.OperationID,
			"step":        step,
			"completed":   completed,
		},
	})
	return pf
}

func (f *fanout) complete(ctx context.Context) {
	f.intent.State = models.IntentCompleted
	if !f.persisted {
		return
	}
	if err := f.d.Stores.Intents.Complete(ctx, f.intent.ID); err != nil {
		f.d.log().Warn("Failed to complete workflow intent",
			zap.String("operationId", f.intent.OperationID), zap.Error(err))
	}
}

func (f *fanout) abandon(ctx context.Context, reason string) {
	f.intent.State = models.IntentAbandoned
	if err := f.d.Stores.Intents.Abandon(ctx, f.intent.ID, reason); err != nil {
		f.d.log().Warn("Failed to abandon workflow intent",
			zap.String("operationId", f.intent.OperationID), zap.Error(err))
	}
}

func hexOrEmpty(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

func stepErr(what string, err error) error {
	return fmt.Errorf("%s: %w", what, err)
}
