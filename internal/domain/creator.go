package domain

// WhitelistedCreator is a creator known to the storefront.
// Address and Activated come from chain; the display fields come from
// configured profiles and may be empty.
type WhitelistedCreator struct {
	Address     string
	Activated   bool
	Name        string
	Image       string
	Twitter     string // social link
	Description string
}
