package service

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
	"github.com/stewardhq/steward-go/pkg/signer"
	"github.com/stewardhq/steward-go/pkg/token"
)

// Token payload prefixes. Only unsigned payloads are ever stored or
// compared; the signed form exists solely on the wire.
const (
	UserTokenPrefix   = "swut_"
	AccessTokenPrefix = "swat_"
)

// Token kind identifiers returned to relays.
const (
	TokenKindUser   = "USER_AUTHORIZATION_TOKEN"
	TokenKindAccess = "CLIENT_ACCESS_TOKEN"
)

// DefaultUserTokenTTL bounds how long an issued user token can be
// exchanged for an access token.
const DefaultUserTokenTTL = 5 * time.Minute

// OAuthService drives the relay authorization flow: a user authorizes
// a client through an official relay, receives a short-lived user
// token, and the relay exchanges it for a permanent access token.
type OAuthService struct {
	authorizer   *StepAuthorizer
	rels         storage.RelationshipStore
	userSigner   *signer.TimestampSigner
	accessSigner *signer.Signer
	userTokenTTL time.Duration
	logger       *slog.Logger
}

// OAuthConfig holds configuration for OAuthService.
type OAuthConfig struct {
	// UserTokenTTL is the exchange window for issued user tokens.
	// Defaults to DefaultUserTokenTTL.
	UserTokenTTL time.Duration
}

// NewOAuthService creates the service. userSigner signs short-lived
// user tokens; accessSigner signs permanent access tokens. The two
// must be keyed independently.
func NewOAuthService(
	authorizer *StepAuthorizer,
	rels storage.RelationshipStore,
	userSigner *signer.TimestampSigner,
	accessSigner *signer.Signer,
	cfg OAuthConfig,
	logger *slog.Logger,
) *OAuthService {
	if cfg.UserTokenTTL <= 0 {
		cfg.UserTokenTTL = DefaultUserTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OAuthService{
		authorizer:   authorizer,
		rels:         rels,
		userSigner:   userSigner,
		accessSigner: accessSigner,
		userTokenTTL: cfg.UserTokenTTL,
		logger:       logger,
	}
}

// IssueUserTokenRequest contains parameters for user token issuance.
type IssueUserTokenRequest struct {
	Credentials Credentials
	Scope       string
}

// IssueUserTokenResponse contains the issued token.
type IssueUserTokenResponse struct {
	ID    string
	Token string
}

// IssueUserToken authenticates the user against the origin client and
// issues a time-limited user token, recording a pending AUTHORIZED
// relationship. Re-issuing replaces any previous pending relationship
// for the same user and client.
func (s *OAuthService) IssueUserToken(ctx context.Context, req *IssueUserTokenRequest) (*IssueUserTokenResponse, error) {
	// 1. Run the pipeline: origin client + user credentials.
	grant, err := s.authorizer.Authorize(ctx, StepUserAuthorization, &req.Credentials)
	if err != nil {
		return nil, err
	}

	// 2. A grant without a scope is meaningless.
	if req.Scope == "" {
		return nil, domain.ErrScopeNotFound.WithDetails("scope is required")
	}

	// 3. Mint a fresh payload and sign it with the issuance time.
	payload, err := token.Generate()
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	payload = UserTokenPrefix + payload
	signed := s.userSigner.Sign(payload)

	// 4. Replace any pending authorization for this user and client.
	pred := domain.Predicate{
		"username":  grant.User.Username,
		"client_id": grant.Client.ClientID,
	}
	if _, err := s.rels.Delete(ctx, domain.RelAuthorized, pred); err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	rel := domain.NewRelationship(domain.RelAuthorized, grant.User.Username, grant.Client.ClientID, payload, req.Scope)
	if err := s.rels.Insert(ctx, rel); err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	s.logger.Info("user token issued",
		"username", grant.User.Username,
		"client_id", grant.Client.ClientID,
		"scope", req.Scope)

	return &IssueUserTokenResponse{ID: TokenKindUser, Token: signed}, nil
}

// ExchangeAccessTokenRequest contains parameters for token exchange.
type ExchangeAccessTokenRequest struct {
	Credentials Credentials
	UserToken   string
}

// ExchangeAccessTokenResponse contains the permanent access token.
type ExchangeAccessTokenResponse struct {
	ID    string
	Token string
}

// ExchangeAccessToken consumes a pending AUTHORIZED relationship and
// grants a permanent USES relationship with a fresh access token. The
// user token is single-use: a second exchange with the same token
// fails because the pending relationship is gone.
func (s *OAuthService) ExchangeAccessToken(ctx context.Context, req *ExchangeAccessTokenRequest) (*ExchangeAccessTokenResponse, error) {
	// 1. Client and user resolution; only official relays may exchange.
	grant, err := s.authorizer.Authorize(ctx, StepAccessExchange, &req.Credentials)
	if err != nil {
		return nil, err
	}

	// 2. Recover the unsigned payload, enforcing the exchange window.
	payload, err := s.userSigner.Unsign(req.UserToken, s.userTokenTTL)
	if err != nil {
		return nil, domain.ErrAuthTokenInvalid.WithCause(err)
	}

	// 3. Find the pending authorization for this user and client.
	pred := domain.Predicate{
		"username":  grant.User.Username,
		"client_id": grant.Client.ClientID,
	}
	pending, err := s.rels.Find(ctx, domain.RelAuthorized, pred)
	if err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}
	if len(pending) == 0 {
		return nil, domain.ErrUserNotAuthorized.WithDetails(
			"no pending authorization for client " + grant.Client.ClientID)
	}

	// 4. The presented token must match a stored pending payload.
	var matched *domain.Relationship
	for _, rel := range pending {
		if subtle.ConstantTimeCompare([]byte(rel.UserToken), []byte(payload)) == 1 {
			matched = rel
			break
		}
	}
	if matched == nil {
		s.logger.Warn("user token mismatch", "client_id", grant.Client.ClientID)
		return nil, domain.ErrAuthTokenMismatched
	}

	// 5. Consume the pending authorization.
	consume := domain.Predicate{
		"username":   matched.Username,
		"client_id":  matched.ClientID,
		"user_token": matched.UserToken,
	}
	if _, err := s.rels.Delete(ctx, domain.RelAuthorized, consume); err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	// 6. Grant the permanent relationship with a fresh access payload.
	accessPayload, err := token.Generate()
	if err != nil {
		return nil, domain.ErrInternal.WithCause(err)
	}
	accessPayload = AccessTokenPrefix + accessPayload
	uses := domain.NewRelationship(domain.RelUses, matched.Username, matched.ClientID, accessPayload, matched.Scope)
	if err := s.rels.Insert(ctx, uses); err != nil {
		return nil, domain.ErrStorage.WithCause(err)
	}

	s.logger.Info("access token granted",
		"username", matched.Username,
		"client_id", matched.ClientID,
		"scope", matched.Scope)

	return &ExchangeAccessTokenResponse{
		ID:    TokenKindAccess,
		Token: s.accessSigner.Sign(accessPayload),
	}, nil
}

// Revoke removes the relationship a step carries for the presented
// client (and user, when given).
func (s *OAuthService) Revoke(ctx context.Context, step Step, creds *Credentials) error {
	if step.RelKind == "" {
		return domain.ErrStepIDNotFound.WithDetails("step " + step.Name + " carries no relationship")
	}

	// Resolve the client without requiring the relationship to exist,
	// so a missing one reports its own error below.
	resolve := step
	resolve.CheckRelationship = false
	grant, err := s.authorizer.Authorize(ctx, resolve, creds)
	if err != nil {
		return err
	}

	pred := domain.Predicate{"client_id": grant.Client.ClientID}
	if creds.Username != "" {
		pred["username"] = creds.Username
	}
	removed, err := s.rels.Delete(ctx, step.RelKind, pred)
	if err != nil {
		return domain.ErrStorage.WithCause(err)
	}
	if !removed {
		return domain.ErrRelationshipNotFound.WithDetails(
			"no " + string(step.RelKind) + " relationship for client " + grant.Client.ClientID)
	}

	s.logger.Info("relationship revoked",
		"kind", string(step.RelKind),
		"client_id", grant.Client.ClientID,
		"username", creds.Username)
	return nil
}
