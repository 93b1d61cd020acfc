// Package gateway wraps the /v1 routes of the platform gateway used by the storefront.
package gateway

import (
	"vibex-storefront/internal/apiclient"
)

// Services groups one client per backend route prefix.
type Services struct {
	Auth     *Auth
	Users    *Users
	Wallet   *Wallet
	Orders   *Orders
	Stock    *Stock
	Payments *Payments
}

// New builds wrappers for every route prefix under gatewayURL.
func New(gatewayURL string, opts ...apiclient.Option) *Services {
	return &Services{
		Auth:     &Auth{api: apiclient.New(gatewayURL+"/v1/auth", opts...)},
		Users:    &Users{api: apiclient.New(gatewayURL+"/v1/user", opts...)},
		Wallet:   &Wallet{api: apiclient.New(gatewayURL+"/v1/user/wallet", opts...)},
		Orders:   &Orders{api: apiclient.New(gatewayURL+"/v1/order", opts...)},
		Stock:    &Stock{api: apiclient.New(gatewayURL+"/v1/stock", opts...)},
		Payments: &Payments{api: apiclient.New(gatewayURL+"/v1/payment", opts...)},
	}
}

// ForSession returns wrappers that authenticate as one shopper and report
// forced logins to nav. The transport is shared.
func (s *Services) ForSession(auth apiclient.AuthProvider, nav apiclient.Navigator) *Services {
	bind := []apiclient.Option{apiclient.WithAuth(auth), apiclient.WithNavigator(nav)}
	return &Services{
		Auth:     &Auth{api: s.Auth.api.With(bind...)},
		Users:    &Users{api: s.Users.api.With(bind...)},
		Wallet:   &Wallet{api: s.Wallet.api.With(bind...)},
		Orders:   &Orders{api: s.Orders.api.With(bind...)},
		Stock:    &Stock{api: s.Stock.api.With(bind...)},
		Payments: &Payments{api: s.Payments.api.With(bind...)},
	}
}
