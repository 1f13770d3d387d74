// Package service provides the domain services for Steward.
//
// OAuthService drives the relay authorization flow: user token
// issuance, access token exchange, and revocation. StepAuthorizer
// validates inbound relay requests through a staged pipeline before
// any handler runs. UserService manages accounts and per-user
// settings. Services depend on the storage interfaces and never on a
// concrete engine.
package service
