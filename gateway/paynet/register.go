package paynet

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("paynet", New)
}
