package domain

import "time"

// RelationshipKind names the type of a persisted user/client edge.
type RelationshipKind string

const (
	// RelAuthorized is the pending edge created when a user token is
	// issued. It is consumed by the access-token exchange.
	RelAuthorized RelationshipKind = "AUTHORIZED"

	// RelUses is the permanent edge created when an access token is
	// granted.
	RelUses RelationshipKind = "USES"
)

// Relationship is a directed, typed edge between a user and a client.
// It is the persisted proof that a prior authorization step succeeded.
type Relationship struct {
	// Kind is the edge type.
	Kind RelationshipKind `json:"kind"`

	// Username identifies the user end of the edge.
	Username string `json:"username"`

	// ClientID identifies the client end of the edge.
	ClientID string `json:"client_id"`

	// UserToken is the unsigned token payload bound to the edge: the
	// pending user token on AUTHORIZED, the granted access token on
	// USES. Always stored unsigned.
	UserToken string `json:"user_token,omitempty"`

	// Scope names the capability the authorization grants.
	Scope string `json:"scope,omitempty"`

	// CreatedAt is the edge creation timestamp (Unix milliseconds).
	CreatedAt int64 `json:"created_at"`
}

// NewRelationship creates an edge of the given kind between a user and
// a client, carrying an unsigned token payload and a scope.
func NewRelationship(kind RelationshipKind, username, clientID, userToken, scope string) *Relationship {
	return &Relationship{
		Kind:      kind,
		Username:  username,
		ClientID:  clientID,
		UserToken: userToken,
		Scope:     scope,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// Predicate is an exact-match key/value filter over relationship
// fields. The store applies first-match semantics: callers must treat
// the first returned record as authoritative and not assume any sort
// order.
type Predicate map[string]string

// Matches reports whether the relationship satisfies every entry of
// the predicate. Unknown keys never match.
func (r *Relationship) Matches(pred Predicate) bool {
	for key, want := range pred {
		switch key {
		case "username":
			if r.Username != want {
				return false
			}
		case "client_id":
			if r.ClientID != want {
				return false
			}
		case "user_token":
			if r.UserToken != want {
				return false
			}
		case "scope":
			if r.Scope != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Clone creates a copy of the relationship.
func (r *Relationship) Clone() *Relationship {
	clone := *r
	return &clone
}
