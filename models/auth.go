// models/auth.go

package models

// RegisterVendorRequest is the vendor signup body. Per-category payloads are
// only read for the tags listed in VendorTypes.
type RegisterVendorRequest struct {
	Email       string          `json:"email" validate:"required"`
	Username    string          `json:"username" validate:"required"`
	Password    string          `json:"password" validate:"required"`
	Address     string          `json:"address" validate:"required"`
	Birthdate   string          `json:"birthdate" validate:"required"`
	Sex         string          `json:"sex" validate:"required"`
	VendorTypes []string        `json:"vendorTypes" validate:"required,min=1,unique,dive,oneof=album services product proposal"`
	Album       *AlbumSignup    `json:"album,omitempty" validate:"-"`
	Services    *ServicesSignup `json:"services,omitempty" validate:"-"`
	Product     *ProductSignup  `json:"product,omitempty" validate:"-"`
	Proposal    *ProposalSignup `json:"proposal,omitempty" validate:"-"`
}

type AlbumSignup struct {
	Name       string `json:"name" validate:"required"`
	WhatsappNo string `json:"whatsappNo" validate:"required"`
	ProfilePic string `json:"profilePic,omitempty"`
	SlipPhoto  string `json:"slipPhoto,omitempty"`
}

type ServicesSignup struct {
	WhatsappNo       string   `json:"whatsappNo" validate:"required"`
	SelectedServices []string `json:"selectedServices" validate:"required,min=1,dive,required"`
	ProfilePic       string   `json:"profilePic,omitempty"`
	SlipPhoto        string   `json:"slipPhoto,omitempty"`
}

type ProductSignup struct {
	CompanyName string `json:"companyName" validate:"required"`
	Description string `json:"description,omitempty"`
	WhatsappNo  string `json:"whatsappNo" validate:"required"`
	LogoPic     string `json:"logoPic,omitempty"`
	SlipPhoto   string `json:"slipPhoto,omitempty"`
}

type ProposalSignup struct {
	Name       string `json:"name" validate:"required"`
	WhatsappNo string `json:"whatsappNo" validate:"required"`
	ProfilePic string `json:"profilePic,omitempty"`
	SlipPhoto  string `json:"slipPhoto,omitempty"`
}

// LoginRequest is shared by vendor and admin login
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	Token string      `json:"token"`
	User  interface{} `json:"user"`
}
