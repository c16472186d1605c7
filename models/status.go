package models

// Vendor registry statuses
const (
	VendorStatusPending  = "pending"
	VendorStatusApproved = "approved"
	VendorStatusRejected = "rejected"
)

// Type profile and subscription statuses
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Vendor categories ("vendor types")
const (
	CategoryAlbum    = "album"
	CategoryServices = "services"
	CategoryProduct  = "product"
	CategoryProposal = "proposal"
)

// Categories lists every vendor category in registration order.
var Categories = []string{CategoryAlbum, CategoryServices, CategoryProduct, CategoryProposal}

// IsCategory reports whether c is a known vendor category.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ProfileCollection returns the type profile collection backing a category.
func ProfileCollection(category string) string {
	switch category {
	case CategoryAlbum:
		return "album_vendors"
	case CategoryServices:
		return "service_vendors"
	case CategoryProduct:
		return "product_vendors"
	case CategoryProposal:
		return "proposal_vendors"
	}
	return ""
}

// Vendor owned content collections
const (
	ContentAlbums    = "albums"
	ContentProducts  = "vendor_products"
	ContentProposals = "vendor_proposal"
	ContentTemplates = "vendor_album_template"
	ContentVideos    = "vendor_video"
)

// ContentCollections lists every collection removed with a vendor.
var ContentCollections = []string{ContentAlbums, ContentProducts, ContentProposals, ContentTemplates, ContentVideos}

// Set stores n under the counter backing collection.
func (c *ContentCounts) Set(collection string, n int64) {
	switch collection {
	case ContentAlbums:
		c.Albums = n
	case ContentProducts:
		c.Products = n
	case ContentProposals:
		c.Proposals = n
	case ContentTemplates:
		c.Templates = n
	case ContentVideos:
		c.Videos = n
	}
}
