package payu

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("payu", New)
}
