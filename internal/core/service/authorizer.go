package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
	"github.com/stewardhq/steward-go/pkg/signer"
)

// Step describes one stage of the relay authorization pipeline. The
// set of steps is closed: handlers pick a predefined step and the
// authorizer runs the same checks in the same order for all of them.
type Step struct {
	// Name identifies the step in logs and error details.
	Name string

	// RelKind is the relationship kind this step operates on. Empty
	// for steps that carry no relationship.
	RelKind domain.RelationshipKind

	// NeedsUser requires user credentials to be present and valid.
	NeedsUser bool

	// CheckRelationship requires an existing relationship of RelKind
	// between the user and the origin client.
	CheckRelationship bool

	// RequireOfficial requires the relay client to be marked official.
	RequireOfficial bool
}

// Predefined steps.
var (
	// StepUserAuthorization authenticates a user against an origin
	// client before a user token is issued.
	StepUserAuthorization = Step{
		Name:      "user_authorization",
		RelKind:   domain.RelAuthorized,
		NeedsUser: true,
	}

	// StepAccessExchange guards the exchange of a user token for a
	// permanent access token. The user re-authenticates and only
	// official relays may perform it.
	StepAccessExchange = Step{
		Name:            "access_exchange",
		RelKind:         domain.RelAuthorized,
		NeedsUser:       true,
		RequireOfficial: true,
	}
)

// GenericStep builds a step that checks an existing relationship of
// the given kind, for endpoints guarded by a granted access token.
func GenericStep(kind domain.RelationshipKind) Step {
	return Step{
		Name:              "rel_" + string(kind),
		RelKind:           kind,
		CheckRelationship: true,
	}
}

// Credentials carries everything a relay presents on one request.
// The origin pair identifies the client the user is interacting with;
// the relay pair identifies the intermediary forwarding the request.
// Either pair alone is acceptable; when both are present the origin
// pair is authoritative for relationship checks.
type Credentials struct {
	ClientID     string
	ClientSecret string

	RelayClientID     string
	RelayClientSecret string

	Username string
	Password string
}

// Grant is the product of a successful authorization pipeline run.
type Grant struct {
	// Client is the resolved origin client.
	Client *domain.Client

	// Relay is the resolved relay client. Equal to Client when only
	// one pair was presented.
	Relay *domain.Client

	// User is set when the step required user credentials.
	User *domain.User

	// Relationship is set when the step checked one.
	Relationship *domain.Relationship
}

// StepAuthorizer validates relay requests through the staged pipeline:
// client resolution, then user resolution, then relationship check.
// The first failing stage short-circuits the rest.
type StepAuthorizer struct {
	clients  storage.ClientStore
	users    storage.UserStore
	rels     storage.RelationshipStore
	verifier *CredentialVerifier
	signer   *signer.Signer
	logger   *slog.Logger
}

// NewStepAuthorizer creates an authorizer over the given stores.
func NewStepAuthorizer(
	clients storage.ClientStore,
	users storage.UserStore,
	rels storage.RelationshipStore,
	verifier *CredentialVerifier,
	secretSigner *signer.Signer,
	logger *slog.Logger,
) *StepAuthorizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StepAuthorizer{
		clients:  clients,
		users:    users,
		rels:     rels,
		verifier: verifier,
		signer:   secretSigner,
		logger:   logger,
	}
}

// Authorize runs the pipeline for one step and returns the grant.
func (a *StepAuthorizer) Authorize(ctx context.Context, step Step, creds *Credentials) (*Grant, error) {
	grant := &Grant{}

	// 1. Resolve the origin client; fall back to the relay pair when
	//    no origin pair is present.
	originID, originSecret := creds.ClientID, creds.ClientSecret
	if originID == "" {
		originID, originSecret = creds.RelayClientID, creds.RelayClientSecret
	}
	client, err := a.resolveClient(ctx, step, originID, originSecret)
	if err != nil {
		return nil, err
	}
	grant.Client = client
	grant.Relay = client

	// 2. Resolve the relay pair when it differs from the origin.
	if creds.RelayClientID != "" && creds.RelayClientID != originID {
		relay, err := a.resolveClient(ctx, step, creds.RelayClientID, creds.RelayClientSecret)
		if err != nil {
			return nil, err
		}
		grant.Relay = relay
	}
	if step.RequireOfficial && !grant.Relay.Official {
		a.logger.Warn("unofficial relay rejected",
			"step", step.Name, "relay", grant.Relay.ClientID)
		return nil, domain.ErrClientUnofficial.WithDetails("client " + grant.Relay.ClientID)
	}

	// 3. Resolve the user.
	if step.NeedsUser {
		user, err := a.resolveUser(ctx, creds.Username, creds.Password)
		if err != nil {
			return nil, err
		}
		grant.User = user
	}

	// 4. Check the relationship.
	if step.CheckRelationship {
		if step.RelKind == "" {
			return nil, domain.ErrStepIDNotFound.WithDetails("step " + step.Name + " carries no relationship")
		}
		pred := domain.Predicate{"client_id": grant.Client.ClientID}
		if creds.Username != "" {
			pred["username"] = creds.Username
		}
		rels, err := a.rels.Find(ctx, step.RelKind, pred)
		if err != nil {
			return nil, domain.ErrStorage.WithCause(err)
		}
		if len(rels) == 0 {
			return nil, domain.ErrRelationshipNotFound.WithDetails(
				"no " + string(step.RelKind) + " relationship for client " + grant.Client.ClientID)
		}
		grant.Relationship = rels[0]
	}

	return grant, nil
}

// resolveClient looks up a client and verifies its signed secret.
func (a *StepAuthorizer) resolveClient(ctx context.Context, step Step, clientID, clientSecret string) (*domain.Client, error) {
	if clientID == "" {
		return nil, domain.ErrClientIDInvalid.WithDetails("missing client id")
	}

	client, err := a.clients.GetClient(ctx, clientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("unknown client", "step", step.Name, "client_id", clientID)
			return nil, domain.ErrClientIDInvalid.WithDetails("client " + clientID)
		}
		return nil, domain.ErrStorage.WithCause(err)
	}

	payload, err := a.signer.Unsign(clientSecret)
	if err != nil {
		return nil, domain.ErrAuthTokenInvalid.WithDetails("client secret signature")
	}
	if !a.verifier.Verify(payload, client.SecretHash) {
		a.logger.Warn("client secret mismatch", "step", step.Name, "client_id", clientID)
		return nil, domain.ErrAuthTokenInvalid.WithDetails("client secret")
	}

	return client, nil
}

// resolveUser authenticates a user by password. Unknown users and bad
// passwords are indistinguishable to the caller.
func (a *StepAuthorizer) resolveUser(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" {
		return nil, domain.ErrUserNotAuthorized.WithDetails("missing username")
	}

	user, err := a.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, domain.ErrUserNotAuthorized
		}
		return nil, domain.ErrStorage.WithCause(err)
	}
	if !a.verifier.Verify(password, user.PasswordHash) {
		a.logger.Warn("user password mismatch", "username", username)
		return nil, domain.ErrUserNotAuthorized
	}

	return user, nil
}
