package service

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"

	"github.com/stewardhq/steward-go/internal/core/domain"
	"github.com/stewardhq/steward-go/internal/storage"
	"github.com/stewardhq/steward-go/pkg/signer"
)

// mockStore is an in-memory storage.Store with call counters, for
// asserting which stages of the pipeline actually ran.
type mockStore struct {
	clients map[string]*domain.Client
	users   map[string]*domain.User
	rels    []*domain.Relationship

	clientGets int
	userGets   int
	relFinds   int
}

func newMockStore() *mockStore {
	return &mockStore{
		clients: make(map[string]*domain.Client),
		users:   make(map[string]*domain.User),
	}
}

func (m *mockStore) GetClient(ctx context.Context, clientID string) (*domain.Client, error) {
	m.clientGets++
	client, ok := m.clients[clientID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return client, nil
}

func (m *mockStore) PutClient(ctx context.Context, client *domain.Client) error {
	m.clients[client.ClientID] = client
	return nil
}

func (m *mockStore) DeleteClient(ctx context.Context, clientID string) error {
	if _, ok := m.clients[clientID]; !ok {
		return storage.ErrNotFound
	}
	delete(m.clients, clientID)
	return nil
}

func (m *mockStore) ListClients(ctx context.Context) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, c := range m.clients {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockStore) GetUser(ctx context.Context, username string) (*domain.User, error) {
	m.userGets++
	user, ok := m.users[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (m *mockStore) PutUser(ctx context.Context, user *domain.User) error {
	m.users[user.Username] = user
	return nil
}

func (m *mockStore) DeleteUser(ctx context.Context, username string) error {
	if _, ok := m.users[username]; !ok {
		return storage.ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *mockStore) Insert(ctx context.Context, rel *domain.Relationship) error {
	m.rels = append(m.rels, rel.Clone())
	return nil
}

func (m *mockStore) Find(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) ([]*domain.Relationship, error) {
	m.relFinds++
	var out []*domain.Relationship
	for _, rel := range m.rels {
		if rel.Kind == kind && rel.Matches(pred) {
			out = append(out, rel.Clone())
		}
	}
	return out, nil
}

func (m *mockStore) Delete(ctx context.Context, kind domain.RelationshipKind, pred domain.Predicate) (bool, error) {
	kept := m.rels[:0]
	removed := false
	for _, rel := range m.rels {
		if rel.Kind == kind && rel.Matches(pred) {
			removed = true
			continue
		}
		kept = append(kept, rel)
	}
	m.rels = kept
	return removed, nil
}

func (m *mockStore) Close() error { return nil }

// Fixed test keys.
const (
	testSecretKey = "client-secret-signing-key"
	testUserKey   = "user-token-signing-key"
	testAccessKey = "access-token-signing-key"
)

// testFixture wires an authorizer over a mock store with one official
// client, one unofficial client, and one user.
type testFixture struct {
	store      *mockStore
	verifier   *CredentialVerifier
	signer     *signer.Signer
	authorizer *StepAuthorizer

	officialSecret   string
	unofficialSecret string
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()

	store := newMockStore()
	verifier := NewCredentialVerifier(bcrypt.MinCost)
	secretSigner := signer.New(testSecretKey)

	officialPayload := "official-secret"
	officialHash, err := verifier.Hash(officialPayload)
	if err != nil {
		t.Fatal(err)
	}
	store.PutClient(context.Background(), &domain.Client{
		ClientID:   "rocinate",
		SecretHash: officialHash,
		Official:   true,
	})

	unofficialPayload := "unofficial-secret"
	unofficialHash, err := verifier.Hash(unofficialPayload)
	if err != nil {
		t.Fatal(err)
	}
	store.PutClient(context.Background(), &domain.Client{
		ClientID:   "canterbury",
		SecretHash: unofficialHash,
	})

	passwordHash, err := verifier.Hash("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	store.PutUser(context.Background(), &domain.User{
		Username:     "holden",
		PasswordHash: passwordHash,
		Settings:     map[string]string{"location": "ceres"},
	})

	return &testFixture{
		store:            store,
		verifier:         verifier,
		signer:           secretSigner,
		authorizer:       NewStepAuthorizer(store, store, store, verifier, secretSigner, nil),
		officialSecret:   secretSigner.Sign(officialPayload),
		unofficialSecret: secretSigner.Sign(unofficialPayload),
	}
}

// argon2idHash builds an encoded argon2id digest of secret with the
// standard parameters.
func argon2idHash(secret string) string {
	salt := []byte("somesalt")
	digest := argon2.IDKey([]byte(secret), salt, 2, 16384, 2, 32)
	return "$argon2id$v=19$m=16384,t=2,p=2$" +
		base64.RawStdEncoding.EncodeToString(salt) + "$" +
		base64.RawStdEncoding.EncodeToString(digest)
}

func TestCredentialVerifierBcryptRoundTrip(t *testing.T) {
	v := NewCredentialVerifier(bcrypt.MinCost)

	hash, err := v.Hash("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash produced %q; want a bcrypt digest", hash)
	}
	if !v.Verify("hunter2", hash) {
		t.Error("correct password should verify")
	}
	if v.Verify("hunter3", hash) {
		t.Error("wrong password should not verify")
	}
}

func TestCredentialVerifierArgon2id(t *testing.T) {
	v := NewCredentialVerifier(bcrypt.MinCost)

	// $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash> with salt "somesalt"
	// and the digest of "hunter2" under those parameters.
	hash := argon2idHash("hunter2")
	if !v.Verify("hunter2", hash) {
		t.Error("correct password should verify against argon2id")
	}
	if v.Verify("hunter3", hash) {
		t.Error("wrong password should not verify against argon2id")
	}
}

func TestCredentialVerifierMalformedHash(t *testing.T) {
	v := NewCredentialVerifier(bcrypt.MinCost)

	for _, hash := range []string{"", "plaintext", "$argon2id$garbage", "$argon2id$v=19$m=x$salt$hash", "$9$unknown"} {
		if v.Verify("hunter2", hash) {
			t.Errorf("malformed hash %q should verify false", hash)
		}
	}
}
