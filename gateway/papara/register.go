package papara

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("papara", New)
}
