package bridge

// IBridge moves a stablecoin amount (human units) from the origin chain
// to the destination chain. The call blocks until the transfer fills or
// fails; there is no partial success.
type IBridge interface {
	Bridge(amount float64) error
}
