package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultLogLimit = 100

// Decision is an admin verdict on a subscription or type profile
type Decision struct {
	TargetID string
	Category string // profile decisions only
	Status   string
	Remarks  string
	AdminID  primitive.ObjectID
}

type DecisionResult struct {
	SubscriptionID primitive.ObjectID `json:"subscriptionId"`
	VendorID       primitive.ObjectID `json:"vendorId"`
	VendorType     string             `json:"vendorType"`
	Status         string             `json:"status"`
}

type ApprovalService struct {
	d *Deps
}

func NewApprovalService(d *Deps) *ApprovalService {
	return &ApprovalService{d: d}
}

// ListPending returns pending subscriptions newest first, joined with the vendor
func (s *ApprovalService) ListPending(ctx context.Context) ([]models.PendingSubscription, error) {
	pending, err := s.d.Stores.Subscriptions.ListPending(ctx)
	if err != nil {
		return nil, stepErr("list pending subscriptions", err)
	}
	if pending == nil {
		pending = []models.PendingSubscription{}
	}
	return pending, nil
}

// Decide sets a subscription's status. Activation also approves the vendor
// and activates its type profile for the subscription's vendor type;
// rejection touches the subscription only.
func (s *ApprovalService) Decide(ctx context.Context, dec Decision) (*DecisionResult, error) {
	subID, err := parseID("id", dec.TargetID)
	if err != nil {
		return nil, err
	}
	if dec.Status != models.StatusActive && dec.Status != models.StatusRejected {
		return nil, invalid("status", "must be one of [active rejected]")
	}

	sub, err := s.d.Stores.Subscriptions.FindByID(ctx, subID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, stepErr("subscription "+dec.TargetID, ErrNotFound)
		}
		return nil, stepErr("load subscription", err)
	}

	f := s.d.begin(ctx, &models.WorkflowIntent{
		Kind:           models.IntentSubscriptionDecision,
		VendorID:       sub.VendorID,
		SubscriptionID: sub.ID,
		VendorType:     sub.VendorType,
		TargetStatus:   dec.Status,
		PlanName:       sub.PlanName,
	})
	if err := s.d.applyDecision(ctx, f); err != nil {
		return nil, err
	}
	f.complete(ctx)

	s.d.appendLog(ctx, &models.ApprovalLog{
		VendorID:   sub.VendorID,
		AdminID:    dec.AdminID,
		Target:     models.ApprovalTargetSubscription,
		TargetID:   sub.ID,
		VendorType: sub.VendorType,
		Action:     dec.Status,
		Remarks:    strings.TrimSpace(dec.Remarks),
	})

	s.d.log().Info("Subscription decided",
		zap.String("subscriptionId", sub.ID.Hex()),
		zap.String("vendorId", sub.VendorID.Hex()),
		zap.String("vendorType", sub.VendorType),
		zap.String("status", dec.Status))
	s.d.publish(ctx, events.Event{
		Type:           events.SubscriptionDecided,
		VendorID:       sub.VendorID.Hex(),
		VendorType:     sub.VendorType,
		SubscriptionID: sub.ID.Hex(),
		Status:         dec.Status,
		Data:           map[string]interface{}{"planName": sub.PlanName, "adminId": hexOrEmpty(dec.AdminID)},
	})
	s.notifyVendor(ctx, sub.VendorID,
		fmt.Sprintf("Your %s subscription was %s", sub.VendorType, decisionWord(dec.Status)),
		fmt.Sprintf("Your %s subscription (%s) has been %s.%s",
			sub.VendorType, sub.PlanName, decisionWord(dec.Status), remarksLine(dec.Remarks)))

	return &DecisionResult{
		SubscriptionID: sub.ID,
		VendorID:       sub.VendorID,
		VendorType:     sub.VendorType,
		Status:         dec.Status,
	}, nil
}

// applyDecision runs the decision fan-out carried by the intent. The vendor
// and profile writes only happen for activation and never downgrade anything.
func (d *Deps) applyDecision(ctx context.Context, f *fanout) error {
	in := f.intent
	err := f.step(ctx, models.StepSubscriptionStatus, func(ctx context.Context) error {
		return d.Stores.Subscriptions.SetStatus(ctx, in.SubscriptionID, in.TargetStatus)
	})
	if err != nil || in.TargetStatus != models.StatusActive {
		return err
	}

	err = f.step(ctx, models.StepVendorRegistry, func(ctx context.Context) error {
		_, err := d.Stores.Vendors.MarkApproved(ctx, in.VendorID, in.PlanName)
		return err
	})
	if err != nil {
		return err
	}

	return f.step(ctx, models.StepTypeProfile, func(ctx context.Context) error {
		n, err := d.Stores.Profiles.SetStatusByEitherKey(ctx, in.VendorType, in.VendorID, models.StatusActive)
		if err == nil && n == 0 {
			d.log().Debug("No type profile to activate",
				zap.String("vendorId", in.VendorID.Hex()),
				zap.String("vendorType", in.VendorType))
		}
		return err
	})
}

// DecideProfile sets a type profile's status directly. Subscriptions and the
// vendor registry are left alone.
func (s *ApprovalService) DecideProfile(ctx context.Context, dec Decision) (*models.TypeProfile, error) {
	if err := requireCategory(dec.Category); err != nil {
		return nil, err
	}
	id, err := parseID("id", dec.TargetID)
	if err != nil {
		return nil, err
	}
	switch dec.Status {
	case models.StatusPending, models.StatusActive, models.StatusRejected:
	default:
		return nil, invalid("status", "must be one of [pending active rejected]")
	}

	profile, err := s.d.Stores.Profiles.FindByID(ctx, dec.Category, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, stepErr(dec.Category+" profile "+dec.TargetID, ErrNotFound)
		}
		return nil, stepErr("load profile", err)
	}

	remarks := strings.TrimSpace(dec.Remarks)
	if _, err := s.d.Stores.Profiles.SetStatus(ctx, dec.Category, id, dec.Status, remarks); err != nil {
		return nil, stepErr("update profile", err)
	}
	profile.Status = dec.Status
	profile.Remarks = remarks
	profile.UpdatedAt = s.d.now()

	s.d.appendLog(ctx, &models.ApprovalLog{
		VendorID:   profile.OwnerID(),
		AdminID:    dec.AdminID,
		Target:     models.ApprovalTargetProfile,
		TargetID:   profile.ID,
		VendorType: dec.Category,
		Action:     dec.Status,
		Remarks:    remarks,
	})
	s.d.publish(ctx, events.Event{
		Type:       events.ProfileDecided,
		VendorID:   profile.OwnerID().Hex(),
		VendorType: dec.Category,
		Status:     dec.Status,
		Data:       map[string]interface{}{"profileId": profile.ID.Hex()},
	})
	if dec.Status != models.StatusPending {
		s.notifyVendor(ctx, profile.OwnerID(),
			fmt.Sprintf("Your %s profile was %s", dec.Category, decisionWord(dec.Status)),
			fmt.Sprintf("Your %s profile has been %s.%s", dec.Category, decisionWord(dec.Status), remarksLine(remarks)))
	}
	return profile, nil
}

// ListLogs returns the newest approval log entries, optionally for one vendor
func (s *ApprovalService) ListLogs(ctx context.Context, vendorID string, limit int64) ([]models.ApprovalLog, error) {
	var filter *primitive.ObjectID
	if vendorID != "" {
		id, err := parseID("vendorId", vendorID)
		if err != nil {
			return nil, err
		}
		filter = &id
	}
	if limit <= 0 || limit > 500 {
		limit = defaultLogLimit
	}

	logs, err := s.d.Stores.ApprovalLogs.List(ctx, filter, limit)
	if err != nil {
		return nil, stepErr("list approval logs", err)
	}
	if logs == nil {
		logs = []models.ApprovalLog{}
	}
	return logs, nil
}

// appendLog failures never fail the decision
func (d *Deps) appendLog(ctx context.Context, entry *models.ApprovalLog) {
	if d.Stores.ApprovalLogs == nil {
		return
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = d.now()
	if err := d.Stores.ApprovalLogs.Append(ctx, entry); err != nil {
		d.log().Warn("Failed to append approval log",
			zap.String("vendorId", entry.VendorID.Hex()),
			zap.String("target", entry.Target),
			zap.Error(err))
	}
}

func (s *ApprovalService) notifyVendor(ctx context.Context, vendorID primitive.ObjectID, subject, body string) {
	if s.d.Notifier == nil {
		return
	}
	vendor, err := s.d.Stores.Vendors.FindByID(ctx, vendorID)
	if err != nil {
		s.d.log().Debug("Skipping vendor notification", zap.String("vendorId", vendorID.Hex()), zap.Error(err))
		return
	}
	s.d.notify(vendor.Email, subject, body)
}

func decisionWord(status string) string {
	switch status {
	case models.StatusActive:
		return "approved"
	case models.StatusRejected:
		return "rejected"
	}
	return status
}

func remarksLine(remarks string) string {
	if remarks == "" {
		return ""
	}
	return "\n\nRemarks: " + remarks
}
