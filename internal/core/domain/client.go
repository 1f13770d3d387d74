package domain

// Client is a registered API consumer.
//
// Clients are created by an out-of-band registration flow and are
// read-only to the authorization core: the pipeline resolves them and
// verifies their secrets but never mutates them.
type Client struct {
	// ClientID is the unique public identifier.
	ClientID string `json:"client_id"`

	// SecretHash is the one-way hash of the client secret. The secret
	// itself is presented plain-signed by callers and never stored.
	SecretHash string `json:"secret_hash"`

	// Official marks the trusted tier permitted to relay multi-party
	// authorizations on behalf of origin clients.
	Official bool `json:"official"`

	// CallbackURL is the optional redirect target for authorization
	// flows.
	CallbackURL string `json:"callback_url,omitempty"`
}
