package services

import (
	"context"
	"errors"
	"strings"

	"github.com/HSouheill/couplecanvas_backend/events"
	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/repositories"
	"github.com/HSouheill/couplecanvas_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RegistrationResult is returned on successful vendor signup
type RegistrationResult struct {
	VendorID primitive.ObjectID `json:"vendorId"`
	Status   string             `json:"status"`
	Profiles map[string]string  `json:"profiles"`
}

type RegistrationService struct {
	d *Deps
}

func NewRegistrationService(d *Deps) *RegistrationService {
	return &RegistrationService{d: d}
}

// Register creates the vendor, one pending type profile per selected
// category and, for services, one link per selected service.
func (s *RegistrationService) Register(ctx context.Context, req *models.RegisterVendorRequest) (*RegistrationResult, error) {
	if err := s.d.validate(req); err != nil {
		return nil, err
	}
	if err := s.validatePayloads(req); err != nil {
		return nil, err
	}

	existing, err := s.d.Stores.Vendors.FindByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return nil, ErrEmailTaken
	case err != nil && !errors.Is(err, ErrNotFound):
		return nil, stepErr("check email", err)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, stepErr("hash password", err)
	}

	now := s.d.now()
	vendor := &models.Vendor{
		ID:          primitive.NewObjectID(),
		Email:       req.Email,
		Username:    utils.SanitizeInput(req.Username),
		Password:    hashed,
		Address:     utils.SanitizeInput(req.Address),
		Birthdate:   strings.TrimSpace(req.Birthdate),
		Sex:         strings.TrimSpace(req.Sex),
		VendorTypes: req.VendorTypes,
		Status:      models.VendorStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	profiles, links, err := buildProfiles(vendor.ID, req)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].CreatedAt = now
		profiles[i].UpdatedAt = now
	}
	for i := range links {
		links[i].CreatedAt = now
	}

	f := s.d.begin(ctx, &models.WorkflowIntent{
		Kind:         models.IntentRegistration,
		VendorID:     vendor.ID,
		Profiles:     profiles,
		ServiceLinks: links,
	})

	err = f.step(ctx, models.StepVendorInsert, func(ctx context.Context) error {
		err := s.d.Stores.Vendors.Insert(ctx, vendor)
		if errors.Is(err, repositories.ErrDuplicate) {
			return ErrEmailTaken
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.d.applyRegistration(ctx, f); err != nil {
		return nil, err
	}
	f.complete(ctx)

	result := &RegistrationResult{
		VendorID: vendor.ID,
		Status:   vendor.Status,
		Profiles: make(map[string]string, len(profiles)),
	}
	for _, p := range profiles {
		result.Profiles[p.Category] = p.ID.Hex()
	}

	s.d.log().Info("Vendor registered",
		zap.String("vendorId", vendor.ID.Hex()),
		zap.Strings("vendorTypes", vendor.VendorTypes))
	s.d.publish(ctx, events.Event{
		Type:     events.VendorRegistered,
		VendorID: vendor.ID.Hex(),
		Status:   vendor.Status,
		Data:     map[string]interface{}{"vendorTypes": vendor.VendorTypes},
	})
	return result, nil
}

// validatePayloads requires a valid payload for every selected tag and
// ignores payloads for tags that were not selected.
func (s *RegistrationService) validatePayloads(req *models.RegisterVendorRequest) error {
	for _, tag := range req.VendorTypes {
		var payload interface{}
		switch tag {
		case models.CategoryAlbum:
			if req.Album != nil {
				payload = req.Album
			}
		case models.CategoryServices:
			if req.Services != nil {
				payload = req.Services
			}
		case models.CategoryProduct:
			if req.Product != nil {
				payload = req.Product
			}
		case models.CategoryProposal:
			if req.Proposal != nil {
				payload = req.Proposal
			}
		}
		if payload == nil {
			return invalid(tag, "details are required when %s is selected", tag)
		}
		if err := s.d.validate(payload); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				ve.Field = tag + "." + ve.Field
			}
			return err
		}
	}
	return nil
}

func buildProfiles(vendorID primitive.ObjectID, req *models.RegisterVendorRequest) ([]models.TypeProfile, []models.ServiceLink, error) {
	var (
		profiles []models.TypeProfile
		links    []models.ServiceLink
	)

	for _, tag := range req.VendorTypes {
		p := models.TypeProfile{
			ID:       primitive.NewObjectID(),
			VendorID: vendorID,
			Category: tag,
			Status:   models.StatusPending,
		}

		var phone string
		switch tag {
		case models.CategoryAlbum:
			p.Name = utils.SanitizeInput(req.Album.Name)
			p.ProfilePic = strings.TrimSpace(req.Album.ProfilePic)
			p.SlipPhoto = strings.TrimSpace(req.Album.SlipPhoto)
			phone = req.Album.WhatsappNo
		case models.CategoryServices:
			p.ProfilePic = strings.TrimSpace(req.Services.ProfilePic)
			p.SlipPhoto = strings.TrimSpace(req.Services.SlipPhoto)
			phone = req.Services.WhatsappNo
			for _, serviceID := range utils.SanitizeStringArray(req.Services.SelectedServices) {
				links = append(links, models.ServiceLink{
					ID:        primitive.NewObjectID(),
					VendorID:  vendorID,
					ServiceID: serviceID,
					Status:    models.StatusActive,
				})
			}
		case models.CategoryProduct:
			p.CompanyName = utils.SanitizeInput(req.Product.CompanyName)
			p.Description = utils.SanitizeInput(req.Product.Description)
			p.LogoPic = strings.TrimSpace(req.Product.LogoPic)
			p.SlipPhoto = strings.TrimSpace(req.Product.SlipPhoto)
			phone = req.Product.WhatsappNo
		case models.CategoryProposal:
			p.Name = utils.SanitizeInput(req.Proposal.Name)
			p.ProfilePic = strings.TrimSpace(req.Proposal.ProfilePic)
			p.SlipPhoto = strings.TrimSpace(req.Proposal.SlipPhoto)
			phone = req.Proposal.WhatsappNo
		}

		normalized, err := utils.SanitizePhone(phone)
		if err != nil {
			return nil, nil, invalid(tag+".whatsappNo", "%v", err)
		}
		p.WhatsappNo = normalized
		profiles = append(profiles, p)
	}
	return profiles, links, nil
}

// applyRegistration inserts the profiles and service links carried by the
// intent. Ids are assigned up front, so a duplicate key on replay means the
// document is already there.
func (d *Deps) applyRegistration(ctx context.Context, f *fanout) error {
	for i := range f.intent.Profiles {
		p := f.intent.Profiles[i]
		err := f.step(ctx, models.ProfileStep(p.Category), func(ctx context.Context) error {
			return ignoreDuplicate(d.Stores.Profiles.Insert(ctx, &p))
		})
		if err != nil {
			return err
		}
	}

	if len(f.intent.ServiceLinks) == 0 {
		return nil
	}
	return f.step(ctx, models.StepServiceLinks, func(ctx context.Context) error {
		for i := range f.intent.ServiceLinks {
			if err := ignoreDuplicate(d.Stores.ServiceLinks.Insert(ctx, &f.intent.ServiceLinks[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

func ignoreDuplicate(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return nil
	}
	return err
}
