package arpay

import (
	"github.com/armagangokce/arpay-go/gateway"

	_ "github.com/armagangokce/arpay-go/gateway/ipara"
	_ "github.com/armagangokce/arpay-go/gateway/iyzico"
	_ "github.com/armagangokce/arpay-go/gateway/odeal"
	_ "github.com/armagangokce/arpay-go/gateway/papara"
	_ "github.com/armagangokce/arpay-go/gateway/parampos"
	_ "github.com/armagangokce/arpay-go/gateway/paynet"
	_ "github.com/armagangokce/arpay-go/gateway/paytr"
	_ "github.com/armagangokce/arpay-go/gateway/payu"
	_ "github.com/armagangokce/arpay-go/gateway/vepara"
)

// Version is the library version reported to callers
const Version = "1.0.0"

// Create instantiates a gateway by name and configures it when cfg is
// non-empty. All bundled gateways are registered on import, so any
// name returned by AvailableGateways works here.
func Create(name string, cfg gateway.Config) (gateway.Gateway, error) {
	return gateway.Create(name, cfg)
}

// AvailableGateways returns the names of every registered gateway
func AvailableGateways() []string {
	return gateway.Names()
}
