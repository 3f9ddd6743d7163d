package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"workorder/internal/auth"
	"workorder/internal/repository"
	"workorder/internal/service"
	"workorder/internal/testutil"
	myws "workorder/internal/websocket"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryCache is a map-backed cache for exercising cache-aside paths.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]myws.TaskEvent
}

func (p *recordingPublisher) Publish(userID string, ev myws.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[string][]myws.TaskEvent{}
	}
	p.events[userID] = append(p.events[userID], ev)
}

type fixture struct {
	users     *repository.UserRepository
	tokens    *repository.TokenRepository
	tasks     *repository.TaskRepository
	issuer    *auth.TokenManager
	userSvc   *service.UserService
	taskSvc   *service.TaskService
	cache     *memoryCache
	published *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	issuer, err := auth.NewTokenManager([]byte("service-test-secret"), time.Hour)
	require.NoError(t, err)

	f := &fixture{
		users:     repository.NewUserRepository(db, repository.SQLite, nil),
		tokens:    repository.NewTokenRepository(db, repository.SQLite, nil),
		tasks:     repository.NewTaskRepository(db, repository.SQLite, nil),
		issuer:    issuer,
		cache:     newMemoryCache(),
		published: &recordingPublisher{},
	}
	f.userSvc = service.NewUserService(f.users, f.tokens, issuer, fastHasher(), f.cache)
	f.taskSvc = service.NewTaskService(f.tasks, f.cache, f.published)
	return f
}

func (f *fixture) register(t *testing.T, username, phone string) *service.UserInfo {
	t.Helper()
	info, err := f.userSvc.Register(context.Background(), service.RegisterInput{
		Username: username, Phone: phone, Password: "pw123",
	})
	require.NoError(t, err)
	return info
}

// existsNever hides existing users from the fast-path checks.
type existsNever struct {
	*repository.UserRepository
}

func (existsNever) ExistsByUsername(context.Context, string) (bool, error) { return false, nil }
func (existsNever) ExistsByPhone(context.Context, string) (bool, error)    { return false, nil }

func fastHasher() auth.PasswordHasher {
	return auth.NewPasswordHasher(bcrypt.MinCost)
}
