package services

import (
	"context"
	"errors"
	"strings"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// SubmitResult describes the ledger entry a submission landed in
type SubmitResult struct {
	SubscriptionID primitive.ObjectID `json:"subscriptionId"`
	Status         string             `json:"status"`
	Created        bool               `json:"created"`
}

type SubscriptionService struct {
	d     *Deps
	plans *PlanService
}

func NewSubscriptionService(d *Deps, plans *PlanService) *SubscriptionService {
	return &SubscriptionService{d: d, plans: plans}
}

// Submit records a subscription for (vendorId, vendorType). An existing
// record for the pair is overwritten in place, otherwise a new one is
// inserted. Submitting an active (free) plan approves the vendor right away;
// the type profile is left for the admin decision.
func (s *SubscriptionService) Submit(ctx context.Context, req *models.SubscribeRequest) (*SubmitResult, error) {
	vendorID, err := parseID("vendorId", req.VendorID)
	if err != nil {
		return nil, err
	}
	if err := requireCategory(req.VendorType); err != nil {
		return nil, err
	}

	status := req.Status
	switch status {
	case "":
		status = models.StatusPending
	case models.StatusPending, models.StatusActive:
	default:
		return nil, invalid("status", "must be one of [pending active]")
	}
	if req.Amount < 0 {
		return nil, invalid("amount", "must not be negative")
	}

	planName := strings.TrimSpace(req.PlanName)
	amount := req.Amount
	if req.PlanID != "" && (planName == "" || amount == 0) && s.plans != nil {
		plan, err := s.plans.Get(ctx, req.PlanID)
		switch {
		case err == nil:
			if planName == "" {
				planName = plan.DisplayName()
			}
			if amount == 0 {
				amount = plan.Price
			}
		case errors.Is(err, ErrNotFound), IsValidation(err):
		default:
			return nil, stepErr("resolve plan", err)
		}
	}
	if planName == "" {
		return nil, invalid("planName", "is required")
	}

	vendor, err := s.d.Stores.Vendors.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, stepErr("vendor "+vendorID.Hex(), ErrNotFound)
		}
		return nil, stepErr("load vendor", err)
	}

	now := s.d.now()
	sub := &models.Subscription{
		VendorID:    vendor.ID,
		VendorType:  req.VendorType,
		PlanID:      req.PlanID,
		PlanName:    planName,
		Amount:      amount,
		PaymentSlip: strings.TrimSpace(req.PaymentSlip),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.d.Stores.Subscriptions.Upsert(ctx, sub)
	if err != nil {
		return nil, stepErr("store subscription", err)
	}

	if status == models.StatusActive {
		f := s.d.begin(ctx, &models.WorkflowIntent{
			Kind:           models.IntentSubscriptionActivation,
			VendorID:       vendor.ID,
			SubscriptionID: sub.ID,
			VendorType:     sub.VendorType,
			TargetStatus:   models.StatusActive,
			PlanName:       planName,
			CompletedSteps: []string{models.StepSubscriptionUpsert},
		})
		if err := s.d.applyActivation(ctx, f); err != nil {
			return nil, err
		}
		f.complete(ctx)
	}

	s.d.log().Info("Subscription submitted",
		zap.String("vendorId", vendor.ID.Hex()),
		zap.String("vendorType", sub.VendorType),
		zap.String("subscriptionId", sub.ID.Hex()),
		zap.String("status", status),
		zap.Bool("created", created))
	s.d.publish(ctx, events.Event{
		Type:           events.SubscriptionSubmitted,
		VendorID:       vendor.ID.Hex(),
		VendorType:     sub.VendorType,
		SubscriptionID: sub.ID.Hex(),
		Status:         status,
		Data:           map[string]interface{}{"planName": planName, "amount": amount, "created": created},
	})

	return &SubmitResult{SubscriptionID: sub.ID, Status: status, Created: created}, nil
}

// ListForVendor returns every ledger entry of a vendor, optionally for one type.
func (s *SubscriptionService) ListForVendor(ctx context.Context, vendorID primitive.ObjectID, vendorType string) ([]models.Subscription, error) {
	if vendorType != "" {
		if err := requireCategory(vendorType); err != nil {
			return nil, err
		}
	}
	subs, err := s.d.Stores.Subscriptions.ListForVendor(ctx, vendorID, vendorType)
	if err != nil {
		return nil, stepErr("list subscriptions", err)
	}
	if subs == nil {
		subs = []models.Subscription{}
	}
	return subs, nil
}

// Current returns the newest entry for the pair or ErrNotFound.
func (s *SubscriptionService) Current(ctx context.Context, vendorID primitive.ObjectID, vendorType string) (*models.Subscription, error) {
	if err := requireCategory(vendorType); err != nil {
		return nil, err
	}
	return s.d.Stores.Subscriptions.Current(ctx, vendorID, vendorType)
}

// applyActivation propagates a free plan activation to the vendor registry
func (d *Deps) applyActivation(ctx context.Context, f *fanout) error {
	return f.step(ctx, models.StepVendorRegistry, func(ctx context.Context) error {
		_, err := d.Stores.Vendors.MarkApproved(ctx, f.intent.VendorID, f.intent.PlanName)
		return err
	})
}
