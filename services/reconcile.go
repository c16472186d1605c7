package services

import (
	"context"
	"errors"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"go.uber.org/zap"
)

const reconcileBatch = 200

// ReconcileReport summarizes one reconcile pass
type ReconcileReport struct {
	IntentsReplayed  int `json:"intentsReplayed"`
	IntentsAbandoned int `json:"intentsAbandoned"`
	IntentsFailed    int `json:"intentsFailed"`
	VendorsApproved  int `json:"vendorsApproved"`
}

// ReconcileService converges state left behind by interrupted fan-outs
type ReconcileService struct {
	d          *Deps
	retryAfter time.Duration
}

func NewReconcileService(d *Deps, retryAfter time.Duration) *ReconcileService {
	return &ReconcileService{d: d, retryAfter: retryAfter}
}

// Run replays unfinished intents, then makes sure every vendor with an active
// current subscription is approved. Type profiles are left to the decision
// replay since free plan activations do not touch them. Nothing is ever
// downgraded.
func (s *ReconcileService) Run(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}

	intents, err := s.d.Stores.Intents.ListUnfinished(ctx, s.d.now().Add(-s.retryAfter), reconcileBatch)
	if err != nil {
		return nil, stepErr("list unfinished intents", err)
	}
	for i := range intents {
		switch outcome, err := s.replay(ctx, &intents[i]); outcome {
		case models.IntentCompleted:
			report.IntentsReplayed++
		case models.IntentAbandoned:
			report.IntentsAbandoned++
		default:
			report.IntentsFailed++
			s.d.log().Warn("Intent replay failed",
				zap.String("operationId", intents[i].OperationID),
				zap.String("kind", intents[i].Kind),
				zap.Error(err))
		}
	}

	actives, err := s.d.Stores.Subscriptions.ListCurrentActive(ctx)
	if err != nil {
		return report, stepErr("list active subscriptions", err)
	}
	for _, sub := range actives {
		n, err := s.d.Stores.Vendors.EnsureApproved(ctx, sub.VendorID, sub.PlanName)
		if err != nil {
			return report, stepErr("approve vendor "+sub.VendorID.Hex(), err)
		}
		report.VendorsApproved += int(n)
	}

	s.d.log().Info("Reconcile pass finished",
		zap.Int("intentsReplayed", report.IntentsReplayed),
		zap.Int("intentsAbandoned", report.IntentsAbandoned),
		zap.Int("intentsFailed", report.IntentsFailed),
		zap.Int("vendorsApproved", report.VendorsApproved))
	return report, nil
}

// replay resumes one intent from its first incomplete step. An intent whose
// subject changed since (vendor deleted, subscription re-decided) is
// abandoned instead of replayed.
func (s *ReconcileService) replay(ctx context.Context, intent *models.WorkflowIntent) (string, error) {
	f := s.d.resume(intent)

	var err error
	switch intent.Kind {
	case models.IntentRegistration:
		if _, err = s.d.Stores.Vendors.FindByID(ctx, intent.VendorID); errors.Is(err, ErrNotFound) {
			f.abandon(ctx, "vendor no longer exists")
			return models.IntentAbandoned, nil
		} else if err != nil {
			return models.IntentFailed, err
		}
		err = s.d.applyRegistration(ctx, f)

	case models.IntentSubscriptionDecision, models.IntentSubscriptionActivation:
		sub, ferr := s.d.Stores.Subscriptions.FindByID(ctx, intent.SubscriptionID)
		if errors.Is(ferr, ErrNotFound) {
			f.abandon(ctx, "subscription no longer exists")
			return models.IntentAbandoned, nil
		} else if ferr != nil {
			return models.IntentFailed, ferr
		}
		if intent.Done(models.StepSubscriptionStatus) || intent.Done(models.StepSubscriptionUpsert) {
			if sub.Status != intent.TargetStatus {
				f.abandon(ctx, "subscription status changed to "+sub.Status)
				return models.IntentAbandoned, nil
			}
		}
		if intent.Kind == models.IntentSubscriptionDecision {
			err = s.d.applyDecision(ctx, f)
		} else {
			err = s.d.applyActivation(ctx, f)
		}

	default:
		f.abandon(ctx, "unknown intent kind "+intent.Kind)
		return models.IntentAbandoned, nil
	}

	if err != nil {
		return models.IntentFailed, err
	}
	f.complete(ctx)
	return models.IntentCompleted, nil
}
