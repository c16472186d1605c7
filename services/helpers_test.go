package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/repositories/memory"
	"github.com/HSouheill/couplecanvas_backend/services"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Report(err error, _ map[string]string) {
	r.errs = append(r.errs, err)
}

type sentMail struct {
	To, Subject, Body string
}

type recordingNotifier struct {
	sent []sentMail
}

func (n *recordingNotifier) Send(to, subject, body string) error {
	n.sent = append(n.sent, sentMail{to, subject, body})
	return nil
}

type harness struct {
	db       *memory.DB
	deps     *services.Deps
	pub      *recordingPublisher
	reporter *recordingReporter
	notifier *recordingNotifier
	skew     time.Duration

	plans        *services.PlanService
	registration *services.RegistrationService
	subs         *services.SubscriptionService
	approval     *services.ApprovalService
	vendors      *services.VendorService
	reconcile    *services.ReconcileService
	auth         *services.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := memory.NewDB()
	h := &harness{
		db:       db,
		pub:      &recordingPublisher{},
		reporter: &recordingReporter{},
		notifier: &recordingNotifier{},
	}
	h.deps = &services.Deps{
		Stores: services.Stores{
			Vendors:       db.Vendors(),
			Profiles:      db.Profiles(),
			Subscriptions: db.Subscriptions(),
			ServiceLinks:  db.ServiceLinks(),
			Content:       db.Content(),
			ApprovalLogs:  db.ApprovalLogs(),
			Intents:       db.Intents(),
			Plans:         db.Plans(),
			Admins:        db.Admins(),
		},
		Logger:    zap.NewNop(),
		Publisher: h.pub,
		Reporter:  h.reporter,
		Notifier:  h.notifier,
		Now:       func() time.Time { return time.Now().Add(h.skew) },
	}

	h.plans = services.NewPlanService(h.deps, time.Minute)
	h.registration = services.NewRegistrationService(h.deps)
	h.subs = services.NewSubscriptionService(h.deps, h.plans)
	h.approval = services.NewApprovalService(h.deps)
	h.vendors = services.NewVendorService(h.deps)
	h.reconcile = services.NewReconcileService(h.deps, time.Minute)
	h.auth = services.NewAuthService(h.deps, func(userID, email, userType string) (string, error) {
		return userType + ":" + userID, nil
	})
	return h
}

func signup(email string, tags ...string) *models.RegisterVendorRequest {
	req := &models.RegisterVendorRequest{
		Email:       email,
		Username:    "Vendor " + email,
		Password:    "s3cret-pass",
		Address:     "12 Lake Road, Colombo",
		Birthdate:   "1990-04-01",
		Sex:         "female",
		VendorTypes: tags,
	}
	for _, tag := range tags {
		switch tag {
		case models.CategoryAlbum:
			req.Album = &models.AlbumSignup{Name: "Lumiere Albums", WhatsappNo: "+94771234567"}
		case models.CategoryServices:
			req.Services = &models.ServicesSignup{WhatsappNo: "+94771234568", SelectedServices: []string{"svc1", "svc2"}}
		case models.CategoryProduct:
			req.Product = &models.ProductSignup{CompanyName: "Petals Co", WhatsappNo: "+94771234569"}
		case models.CategoryProposal:
			req.Proposal = &models.ProposalSignup{Name: "Ring Ideas", WhatsappNo: "+94771234560"}
		}
	}
	return req
}

func (h *harness) register(t *testing.T, email string, tags ...string) primitive.ObjectID {
	t.Helper()
	res, err := h.registration.Register(context.Background(), signup(email, tags...))
	require.NoError(t, err)
	return res.VendorID
}

func (h *harness) submit(t *testing.T, vendorID primitive.ObjectID, vendorType, planName, status string) *services.SubmitResult {
	t.Helper()
	res, err := h.subs.Submit(context.Background(), &models.SubscribeRequest{
		VendorID:   vendorID.Hex(),
		VendorType: vendorType,
		PlanName:   planName,
		Amount:     1500,
		Status:     status,
	})
	require.NoError(t, err)
	return res
}

func (h *harness) vendor(t *testing.T, id primitive.ObjectID) *models.Vendor {
	t.Helper()
	v, err := h.db.Vendors().FindByID(context.Background(), id)
	require.NoError(t, err)
	return v
}

func (h *harness) profile(t *testing.T, category string, vendorID primitive.ObjectID) *models.TypeProfile {
	t.Helper()
	p, err := h.db.Profiles().FindByEitherKey(context.Background(), category, vendorID)
	require.NoError(t, err)
	return p
}

func (h *harness) subscription(t *testing.T, id primitive.ObjectID) *models.Subscription {
	t.Helper()
	s, err := h.db.Subscriptions().FindByID(context.Background(), id)
	require.NoError(t, err)
	return s
}

func (h *harness) intentsOf(kind string) []models.WorkflowIntent {
	var out []models.WorkflowIntent
	for _, in := range h.db.Snapshot().Intents {
		if in.Kind == kind {
			out = append(out, in)
		}
	}
	return out
}

// ageIntents makes every recorded intent due for replay
func (h *harness) ageIntents() {
	for _, in := range h.db.Snapshot().Intents {
		h.db.Intents().Age(in.ID, time.Hour)
	}
}
