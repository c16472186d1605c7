package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Intent kinds
const (
	IntentRegistration           = "registration"
	IntentSubscriptionDecision   = "subscription_decision"
	IntentSubscriptionActivation = "subscription_activation"
)

// Intent states
const (
	IntentStarted   = "started"
	IntentCompleted = "completed"
	IntentFailed    = "failed"
	IntentAbandoned = "abandoned"
)

// Fan-out step names
const (
	StepVendorInsert       = "vendor_insert"
	StepSubscriptionUpsert = "subscription_upsert"
	StepProfileInsert      = "profile_insert"
	StepServiceLinks       = "service_links"
	StepSubscriptionStatus = "subscription_status"
	StepVendorRegistry     = "vendor_registry"
	StepTypeProfile        = "type_profile"
)

// WorkflowIntent records a multi-collection fan-out before it is applied so an
// interrupted fan-out can be replayed step by step.
type WorkflowIntent struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OperationID    string             `json:"operationId" bson:"operationId"`
	Kind           string             `json:"kind" bson:"kind"`
	VendorID       primitive.ObjectID `json:"vendorId" bson:"vendorId"`
	SubscriptionID primitive.ObjectID `json:"subscriptionId,omitempty" bson:"subscriptionId,omitempty"`
	VendorType     string             `json:"vendorType,omitempty" bson:"vendorType,omitempty"`
	TargetStatus   string             `json:"targetStatus,omitempty" bson:"targetStatus,omitempty"`
	PlanName       string             `json:"planName,omitempty" bson:"planName,omitempty"`
	Profiles       []TypeProfile      `json:"profiles,omitempty" bson:"profiles,omitempty"`
	ServiceLinks   []ServiceLink      `json:"serviceLinks,omitempty" bson:"serviceLinks,omitempty"`
	CompletedSteps []string           `json:"completedSteps" bson:"completedSteps"`
	State          string             `json:"state" bson:"state"`
	FailedStep     string             `json:"failedStep,omitempty" bson:"failedStep,omitempty"`
	LastError      string             `json:"lastError,omitempty" bson:"lastError,omitempty"`
	Attempts       int                `json:"attempts" bson:"attempts"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Done reports whether step already completed.
func (w *WorkflowIntent) Done(step string) bool {
	for _, s := range w.CompletedSteps {
		if s == step {
			return true
		}
	}
	return false
}

// ProfileStep names the insert of the type profile for one category.
func ProfileStep(category string) string {
	return StepProfileInsert + ":" + category
}
