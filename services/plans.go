package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const allPlansKey = "plans:*"

// PlanService serves the subscription plan catalogue from an in-process cache
type PlanService struct {
	d     *Deps
	cache *cache.Cache
}

func NewPlanService(d *Deps, ttl time.Duration) *PlanService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PlanService{d: d, cache: cache.New(ttl, 2*ttl)}
}

// List returns plans, all of them when vendorType is empty
func (s *PlanService) List(ctx context.Context, vendorType string) ([]models.Plan, error) {
	key := allPlansKey
	if vendorType != "" {
		if err := requireCategory(vendorType); err != nil {
			return nil, err
		}
		key = "plans:" + vendorType
	}

	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.Plan), nil
	}

	plans, err := s.d.Stores.Plans.List(ctx, vendorType)
	if err != nil {
		return nil, stepErr("list plans", err)
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	s.cache.SetDefault(key, plans)
	return plans, nil
}

// Get resolves a plan by hex id
func (s *PlanService) Get(ctx context.Context, id string) (*models.Plan, error) {
	oid, err := parseID("planId", id)
	if err != nil {
		return nil, err
	}

	key := "plan:" + id
	if cached, ok := s.cache.Get(key); ok {
		plan := cached.(models.Plan)
		return &plan, nil
	}

	plan, err := s.d.Stores.Plans.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, stepErr("load plan", err)
	}
	s.cache.SetDefault(key, *plan)
	return plan, nil
}

// Create stores a new plan and drops every cached listing
func (s *PlanService) Create(ctx context.Context, req *models.PlanRequest) (*models.Plan, error) {
	if err := s.d.validate(req); err != nil {
		return nil, err
	}

	features := make(models.Features, 0, len(req.Features))
	for _, f := range req.Features {
		if f = strings.TrimSpace(f); f != "" {
			features = append(features, f)
		}
	}

	plan := &models.Plan{
		ID:         primitive.NewObjectID(),
		Name:       strings.TrimSpace(req.Name),
		VendorType: req.VendorType,
		Price:      req.Price,
		Days:       req.Days,
		Features:   features,
		CreatedAt:  s.d.now(),
	}
	if err := s.d.Stores.Plans.Insert(ctx, plan); err != nil {
		return nil, stepErr("create plan", err)
	}
	s.cache.Flush()

	s.d.log().Info("Subscription plan created",
		zap.String("planId", plan.ID.Hex()),
		zap.String("vendorType", plan.VendorType))
	return plan, nil
}
