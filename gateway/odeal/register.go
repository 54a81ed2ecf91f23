package odeal

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("odeal", New)
}
