package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/cache"
	"github.com/gatehouse-io/gatehouse/internal/logging"
	"github.com/gatehouse-io/gatehouse/internal/models"
	"github.com/gatehouse-io/gatehouse/internal/password"
	"github.com/gatehouse-io/gatehouse/internal/rolecipher"
	"github.com/gatehouse-io/gatehouse/internal/store"
	"github.com/gatehouse-io/gatehouse/internal/token"
)

var testHashParams = password.Params{MemoryKB: 8 * 1024, Time: 1, Parallelism: 1}

// memUserStore is an in-memory store.UserStore keyed by email.
type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[string]*models.User{}}
}

func (m *memUserStore) add(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Email] = &u
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, store.ErrNotFound
}

func (m *memUserStore) FindByID(_ context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memUserStore) UpdatePassword(_ context.Context, userID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == userID {
			u.PasswordHash = hash
			return nil
		}
	}
	return store.ErrNotFound
}

// memTokenRows backs both refresh- and reset-token fakes.
type memTokenRows struct {
	mu   sync.Mutex
	rows map[string]models.RefreshToken
}

func newMemTokenRows() *memTokenRows {
	return &memTokenRows{rows: map[string]models.RefreshToken{}}
}

func (m *memTokenRows) Create(_ context.Context, id, userID string, validity time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = models.RefreshToken{ID: id, UserID: userID, ExpiresAt: time.Now().Add(validity)}
	return nil
}

func (m *memTokenRows) Find(_ context.Context, id string) (*models.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[id]; ok {
		return &row, nil
	}
	return nil, store.ErrNotFound
}

func (m *memTokenRows) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memTokenRows) DeleteAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, row := range m.rows {
		if row.UserID == userID {
			delete(m.rows, id)
		}
	}
	return nil
}

func (m *memTokenRows) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memResetRows adapts memTokenRows to store.ResetTokenStore.
type memResetRows struct{ *memTokenRows }

func (m memResetRows) Find(ctx context.Context, id string) (*models.ResetToken, error) {
	row, err := m.memTokenRows.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ResetToken{ID: row.ID, UserID: row.UserID, ExpiresAt: row.ExpiresAt}, nil
}

// recordingMailer captures reset deliveries.
type recordingMailer struct {
	mu     sync.Mutex
	emails []string
	tokens []string
}

func (r *recordingMailer) SendPasswordReset(_ context.Context, email, resetToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	r.tokens = append(r.tokens, resetToken)
	return nil
}

type testEnv struct {
	service  *Service
	users    *memUserStore
	refresh  *memTokenRows
	reset    *memTokenRows
	sessions *cache.SessionStore
	cipher   *rolecipher.Cipher
	tokens   *token.Manager
	hasher   *password.Hasher
	mailer   *recordingMailer
	redis    *miniredis.Miniredis
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cipher, err := rolecipher.NewEphemeral()
	require.NoError(t, err)

	tokens, err := token.NewManager(token.Config{Secret: []byte("test-secret"), AccessTTL: 15 * time.Minute})
	require.NoError(t, err)

	env := &testEnv{
		users:    newMemUserStore(),
		refresh:  newMemTokenRows(),
		reset:    newMemTokenRows(),
		sessions: cache.NewSessionStore(rdb),
		cipher:   cipher,
		tokens:   tokens,
		hasher:   password.NewHasher(testHashParams),
		mailer:   &recordingMailer{},
		redis:    mr,
	}
	env.service = NewService(
		cfg,
		env.users,
		env.refresh,
		memResetRows{env.reset},
		env.sessions,
		cipher,
		tokens,
		env.hasher,
		env.mailer,
		logging.Nop{},
	)
	return env
}

func (e *testEnv) seedUser(t *testing.T, name, email, pass, role string) models.User {
	t.Helper()
	hash, err := e.hasher.Hash(pass)
	require.NoError(t, err)

	user := models.User{
		ID:           "user-" + name,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       2,
		RoleName:     role,
	}
	e.users.add(user)
	return user
}
