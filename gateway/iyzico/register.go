package iyzico

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("iyzico", New)
}
