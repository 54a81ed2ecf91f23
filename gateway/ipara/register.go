package ipara

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("ipara", New)
}
