package constants

const (
	AppStorefront    = "storefront"
	AppProductModule = "storefront-product"
	AppCartModule    = "storefront-cart"
)
