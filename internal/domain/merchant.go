package domain

// Merchant is consumed read-only by the core: the shared key/salt pair feeds
// the hash protocol and the active flag gates initiation.
type Merchant struct {
	ID     string
	Key    string
	Salt   string
	Active bool
}
