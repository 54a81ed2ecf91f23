package parampos

import "github.com/armagangokce/arpay-go/gateway"

func init() {
	gateway.Register("parampos", New)
}
