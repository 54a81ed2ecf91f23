package paytr

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("paytr", New)
}
