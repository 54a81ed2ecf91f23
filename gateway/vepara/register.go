package vepara

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("vepara", New)
}
