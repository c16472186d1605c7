package services

import (
	"context"
	"errors"
	"strings"

	"github.com/HSouheill/couplecanvas_backend/models"
	"github.com/HSouheill/couplecanvas_backend/repositories"
	"github.com/HSouheill/couplecanvas_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// User types carried in tokens
const (
	UserTypeVendor = "vendor"
	UserTypeAdmin  = "admin"
)

// TokenIssuer signs an access token for a user
type TokenIssuer func(userID, email, userType string) (string, error)

type AuthService struct {
	d     *Deps
	issue TokenIssuer
}

func NewAuthService(d *Deps, issue TokenIssuer) *AuthService {
	return &AuthService{d: d, issue: issue}
}

// LoginVendor checks vendor credentials. Pending vendors may log in.
func (s *AuthService) LoginVendor(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.d.validate(req); err != nil {
		return nil, err
	}

	vendor, err := s.d.Stores.Vendors.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, stepErr("load vendor", err)
	}
	if !utils.CheckPassword(vendor.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issue(vendor.ID.Hex(), vendor.Email, UserTypeVendor)
	if err != nil {
		return nil, stepErr("issue token", err)
	}
	return &models.LoginResponse{Token: token, User: vendor.Summary()}, nil
}

// LoginAdmin checks admin credentials and stamps the login time
func (s *AuthService) LoginAdmin(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.d.validate(req); err != nil {
		return nil, err
	}

	admin, err := s.d.Stores.Admins.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, stepErr("load admin", err)
	}
	if !utils.CheckPassword(admin.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}

	now := s.d.now()
	if err := s.d.Stores.Admins.TouchLogin(ctx, admin.ID, now); err != nil {
		s.d.log().Warn("Failed to update admin last login", zap.String("adminId", admin.ID.Hex()), zap.Error(err))
	}
	admin.LastLogin = &now
	admin.Password = ""

	token, err := s.issue(admin.ID.Hex(), admin.Email, UserTypeAdmin)
	if err != nil {
		return nil, stepErr("issue token", err)
	}
	return &models.LoginResponse{Token: token, User: admin}, nil
}

// RegisterAdmin creates another admin account
func (s *AuthService) RegisterAdmin(ctx context.Context, req *models.AdminRegisterRequest) (*models.Admin, error) {
	if err := s.d.validate(req); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(req.Email)
	if _, err := s.d.Stores.Admins.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, stepErr("check admin email", err)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, stepErr("hash password", err)
	}

	now := s.d.now()
	admin := &models.Admin{
		ID:        primitive.NewObjectID(),
		Name:      utils.SanitizeInput(req.Name),
		Email:     email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.d.Stores.Admins.Insert(ctx, admin); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, stepErr("create admin", err)
	}
	admin.Password = ""
	return admin, nil
}

// SeedAdmin creates the bootstrap admin unless one with that email exists
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.RegisterAdmin(ctx, &models.AdminRegisterRequest{Name: "Administrator", Email: email, Password: password})
	switch {
	case err == nil:
		s.d.log().Info("Seeded admin account", zap.String("email", email))
	case errors.Is(err, ErrEmailTaken):
		return nil
	}
	return err
}
