package service

import (
	"SecretKeeper/internal/blindindex"
	"SecretKeeper/internal/events"
	"SecretKeeper/internal/keys"
	"SecretKeeper/internal/model"
	"SecretKeeper/internal/repo"
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testLegacyKey = "0123456789abcdef0123456789abcdef"

// дешёвый argon2 для тестов
var testParams = blindindex.Params{Time: 1, MemoryKiB: 64, Threads: 1, KeyLen: 32}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(evs ...events.Event) {
	p.mu.Lock()
	p.events = append(p.events, evs...)
	p.mu.Unlock()
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	p.events = nil
	p.mu.Unlock()
}

func (p *recordingPublisher) ofKind(k events.Kind) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	svc     *SecretService
	pub     *recordingPublisher
	db      *gorm.DB
	secrets repo.SecretRepository
	indexer *blindindex.Generator
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	p, err := keys.New(testLegacyKey, "")
	require.NoError(t, err)

	store := blindindex.NewSaltStore(repo.NewSaltRepository(db), p)
	gen := blindindex.NewGenerator(store, testParams, nil)
	secrets := repo.NewSecretRepository(db)
	pub := &recordingPublisher{}

	return &testEnv{
		svc:     NewSecretService(secrets, gen, store, pub, nil, zap.NewNop().Sugar()),
		pub:     pub,
		db:      db,
		secrets: secrets,
		indexer: gen,
	}
}

func field(s string) model.EncryptedField {
	return model.EncryptedField{Ciphertext: s, IV: s + "-iv", Tag: s + "-tag"}
}

func payload(key, value string) model.Payload {
	return model.Payload{SecretKey: field(key), SecretValue: field(value), SecretComment: field("")}
}

func actorFor(id string) model.Actor {
	return model.Actor{UserID: id, Channel: "cli", IP: "127.0.0.1", UserAgent: "cli/1.0"}
}

func (e *testEnv) bootstrap(t *testing.T, ws string) {
	t.Helper()
	_, err := e.svc.BootstrapWorkspace(context.Background(), ws)
	require.NoError(t, err)
}

func (e *testEnv) create(t *testing.T, name string, typ model.SecretType, user, value string) *model.Secret {
	t.Helper()
	res, err := e.svc.Create(context.Background(), CreateInput{
		SecretName:  name,
		WorkspaceID: "w1",
		Environment: "prod",
		Type:        typ,
		Actor:       actorFor(user),
		Payload:     payload("key-"+name, value),
	})
	require.NoError(t, err)
	return res.Secret
}
