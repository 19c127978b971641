package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	tasksrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	tokensrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tokens"
	usersrepo "github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

// In-memory backends so handler tests exercise the full stack below the
// router without a database.

// memUsersRepo mirrors the schema's ON DELETE CASCADE: removing a user also
// removes their tasks and token records.
type memUsersRepo struct {
	byID   map[string]*models.User
	nextID int
	tasks  *memTasksRepo
	tokens *memTokensRepo
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: email already in use", common.ErrValidation)
		}
	}
	m.nextID++
	u.ID = fmt.Sprintf("u-%d", m.nextID)
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := m.byID[u.ID]; !ok {
		return nil, common.ErrNotFound
	}
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsersRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(m.byID, id)
	for taskID, task := range m.tasks.tasks {
		if task.OwnerID == id {
			delete(m.tasks.tasks, taskID)
		}
	}
	delete(m.tokens.tokens, id)
	return nil
}

type memTokensRepo struct {
	tokens map[string][]string
}

func (m *memTokensRepo) Add(ctx context.Context, userID, token string) error {
	m.tokens[userID] = append(m.tokens[userID], token)
	return nil
}

func (m *memTokensRepo) Exists(ctx context.Context, userID, token string) (bool, error) {
	for _, t := range m.tokens[userID] {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

func (m *memTokensRepo) Delete(ctx context.Context, userID, token string) error {
	kept := m.tokens[userID][:0]
	for _, t := range m.tokens[userID] {
		if t != token {
			kept = append(kept, t)
		}
	}
	m.tokens[userID] = kept
	return nil
}

func (m *memTokensRepo) DeleteAll(ctx context.Context, userID string) error {
	delete(m.tokens, userID)
	return nil
}

type memTasksRepo struct {
	tasks  map[string]*models.Task
	nextID int
}

func (m *memTasksRepo) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	m.nextID++
	task.ID = fmt.Sprintf("t-%d", m.nextID)
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memTasksRepo) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, common.ErrNotFound
	}
	cp := *task
	return &cp, nil
}

func (m *memTasksRepo) List(ctx context.Context, ownerID string, filter tasksrepo.ListFilter) ([]*models.Task, error) {
	result := make([]*models.Task, 0)
	for _, task := range m.tasks {
		if task.OwnerID != ownerID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		result = append(result, task)
	}
	return result, nil
}

func (m *memTasksRepo) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	existing, ok := m.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return nil, common.ErrNotFound
	}
	m.tasks[task.ID] = task
	return task, nil
}

func (m *memTasksRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	task, ok := m.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return common.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

type memRepoManager struct {
	users  *memUsersRepo
	tokens *memTokensRepo
	tasks  *memTasksRepo
}

func newMemRepoManager() *memRepoManager {
	tokens := &memTokensRepo{tokens: map[string][]string{}}
	tasks := &memTasksRepo{tasks: map[string]*models.Task{}}
	return &memRepoManager{
		users:  &memUsersRepo{byID: map[string]*models.User{}, tasks: tasks, tokens: tokens},
		tokens: tokens,
		tasks:  tasks,
	}
}

func (m *memRepoManager) Users(db dbx.DBTX) usersrepo.Repository     { return m.users }
func (m *memRepoManager) Tokens(db dbx.DBTX) tokensrepo.Repository   { return m.tokens }
func (m *memRepoManager) Tasks(db dbx.DBTX) tasksrepo.Repository     { return m.tasks }
func (m *memRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

type memAvatarStore struct {
	blobs map[string][]byte
}

func (m *memAvatarStore) Put(ctx context.Context, userID string, data []byte) error {
	m.blobs[userID] = data
	return nil
}

func (m *memAvatarStore) Get(ctx context.Context, userID string) ([]byte, error) {
	data, ok := m.blobs[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	return data, nil
}

func (m *memAvatarStore) Delete(ctx context.Context, userID string) error {
	delete(m.blobs, userID)
	return nil
}

type recordingMailer struct {
	welcomes      []string
	cancellations []string
}

func (m *recordingMailer) IsEnabled() bool { return true }
func (m *recordingMailer) SendWelcome(ctx context.Context, email, name string) {
	m.welcomes = append(m.welcomes, email)
}
func (m *recordingMailer) SendCancellation(ctx context.Context, email, name string) {
	m.cancellations = append(m.cancellations, email)
}

type nopLogger struct{}

func (nopLogger) Debug(ctx context.Context, msg string, args ...any) {}
func (nopLogger) Info(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Warn(ctx context.Context, msg string, args ...any)  {}
func (nopLogger) Error(ctx context.Context, msg string, args ...any) {}
func (nopLogger) With(args ...any) logging.Logger                    { return nopLogger{} }

type testEnv struct {
	router *mux.Router
	rm     *memRepoManager
	store  *memAvatarStore
	mailer *recordingMailer
	mock   sqlmock.Sqlmock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := newMemRepoManager()
	cfg := &config.Config{SecretKey: "test-secret", AvatarMaxBytes: 1_000_000, ReqBodySizeLimit: 2_000_000}

	us := services.NewUserService(db, rm, cfg)
	ts := services.NewTaskService(db, rm)
	store := &memAvatarStore{blobs: map[string][]byte{}}
	mailer := &recordingMailer{}

	srv := NewServer("127.0.0.1:0", nopLogger{}, us, ts, store, mailer, cfg.AvatarMaxBytes, cfg.ReqBodySizeLimit)

	return &testEnv{
		router: srv.Router(),
		rm:     rm,
		store:  store,
		mailer: mailer,
		mock:   mock,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// signup registers a user through the real endpoint and returns the session.
func (e *testEnv) signup(t *testing.T, email string) (*models.User, string) {
	t.Helper()

	e.mock.ExpectBegin()
	e.mock.ExpectCommit()

	rec := e.do(t, http.MethodPost, "/users", "", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": "longpass1",
		"age":      30,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.User, resp.Token
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}
