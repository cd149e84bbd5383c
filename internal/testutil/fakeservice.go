// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskpro/internal/service"
)

// BaseTime is the creation time of the first record made by a FakeService.
// Each later record is one second newer.
var BaseTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fakeUser struct {
	id       string
	email    string
	password string
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu       sync.RWMutex
	users    map[string]fakeUser // email -> user
	sessions map[string]string   // access token -> user id
	profiles map[string]service.Profile
	tasks    []service.Task
	seq      int

	// Writes counts successful and failed InsertTask/UpdateTask/DeleteTask calls.
	Writes int
	// Reads counts ListTasks calls.
	Reads int

	// Error injection for testing
	SignUpErr      error
	SignInErr      error
	SignOutErr     error
	CurrentUserErr error
	ListTasksErr   error
	InsertTaskErr  error
	UpdateTaskErr  error
	DeleteTaskErr  error
	GetProfileErr  error
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:    make(map[string]fakeUser),
		sessions: make(map[string]string),
		profiles: make(map[string]service.Profile),
	}
}

// tick returns the next id suffix and timestamp. Caller holds mu.
func (f *FakeService) tick() (int, time.Time) {
	f.seq++
	return f.seq, BaseTime.Add(time.Duration(f.seq-1) * time.Second)
}

func (f *FakeService) issue(userID, email string) service.Identity {
	n, _ := f.tick()
	tok := &oauth2.Token{
		AccessToken: fmt.Sprintf("token-%d", n),
		TokenType:   "Bearer",
	}
	f.sessions[tok.AccessToken] = userID
	return service.Identity{UserID: userID, Email: email, Token: tok}
}

// AddUser registers an account with a profile and returns a live session for it.
func (f *FakeService) AddUser(email, password, fullName string) service.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUser(email, password, fullName)
}

func (f *FakeService) addUser(email, password, fullName string) service.Identity {
	n, now := f.tick()
	id := fmt.Sprintf("user-%d", n)
	f.users[email] = fakeUser{id: id, email: email, password: password}
	f.profiles[id] = service.Profile{ID: id, FullName: fullName, Email: email, CreatedAt: now}
	return f.issue(id, email)
}

// DropProfile removes a user's profile to simulate a not-yet-populated record.
func (f *FakeService) DropProfile(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.profiles, userID)
}

// AddTask stores a task for owner directly, bypassing the write counter.
func (f *FakeService) AddTask(ownerID, title string, status service.Status, priority service.Priority) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(service.TaskRow{Title: title, Status: status, Priority: priority, UserID: ownerID})
}

func (f *FakeService) insert(row service.TaskRow) service.Task {
	n, now := f.tick()
	t := service.Task{
		ID:          fmt.Sprintf("task-%d", n),
		Title:       row.Title,
		Description: row.Description,
		Status:      row.Status,
		Priority:    row.Priority,
		DueDate:     row.DueDate,
		UserID:      row.UserID,
		CreatedAt:   now,
	}
	f.tasks = append(f.tasks, t)
	return t
}

// AllTasks returns every stored task regardless of owner, in insertion order.
func (f *FakeService) AllTasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result
}

// SignUp implements service.Auth.
func (f *FakeService) SignUp(ctx context.Context, email, password string, meta service.Metadata) (service.Identity, error) {
	if f.SignUpErr != nil {
		return service.Identity{}, f.SignUpErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[email]; ok {
		return service.Identity{}, service.ErrEmailTaken
	}
	return f.addUser(email, password, meta.FullName), nil
}

// SignIn implements service.Auth.
func (f *FakeService) SignIn(ctx context.Context, email, password string) (service.Identity, error) {
	if f.SignInErr != nil {
		return service.Identity{}, f.SignInErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.password != password {
		return service.Identity{}, service.ErrInvalidCredentials
	}
	return f.issue(u.id, u.email), nil
}

// SignOut implements service.Auth.
func (f *FakeService) SignOut(ctx context.Context, token *oauth2.Token) error {
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if token != nil {
		delete(f.sessions, token.AccessToken)
	}
	return nil
}

// CurrentUser implements service.Auth.
func (f *FakeService) CurrentUser(ctx context.Context, token *oauth2.Token) (service.Identity, error) {
	if f.CurrentUserErr != nil {
		return service.Identity{}, f.CurrentUserErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if token == nil {
		return service.Identity{}, service.ErrNotAuthenticated
	}
	userID, ok := f.sessions[token.AccessToken]
	if !ok {
		return service.Identity{}, service.ErrNotAuthenticated
	}
	for _, u := range f.users {
		if u.id == userID {
			return service.Identity{UserID: u.id, Email: u.email, Token: token}, nil
		}
	}
	return service.Identity{}, service.ErrNotAuthenticated
}

// ListTasks implements service.TaskStore.
func (f *FakeService) ListTasks(ctx context.Context, ownerID string) ([]service.Task, error) {
	f.mu.Lock()
	f.Reads++
	f.mu.Unlock()
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var result []service.Task
	for _, t := range f.tasks {
		if t.UserID == ownerID {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// InsertTask implements service.TaskStore.
func (f *FakeService) InsertTask(ctx context.Context, row service.TaskRow) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes++
	if f.InsertTaskErr != nil {
		return service.Task{}, f.InsertTaskErr
	}
	return f.insert(row), nil
}

// UpdateTask implements service.TaskStore.
func (f *FakeService) UpdateTask(ctx context.Context, id string, row service.TaskRow) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes++
	if f.UpdateTaskErr != nil {
		return 0, f.UpdateTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == row.UserID {
			f.tasks[i].Title = row.Title
			f.tasks[i].Description = row.Description
			f.tasks[i].Status = row.Status
			f.tasks[i].Priority = row.Priority
			f.tasks[i].DueDate = row.DueDate
			return 1, nil
		}
	}
	return 0, nil
}

// DeleteTask implements service.TaskStore.
func (f *FakeService) DeleteTask(ctx context.Context, id, ownerID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Writes++
	if f.DeleteTaskErr != nil {
		return 0, f.DeleteTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id && t.UserID == ownerID {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

// GetProfile implements service.ProfileStore.
func (f *FakeService) GetProfile(ctx context.Context, userID string) (service.Profile, error) {
	if f.GetProfileErr != nil {
		return service.Profile{}, f.GetProfileErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.profiles[userID]
	if !ok {
		return service.Profile{}, service.ErrNotFound
	}
	return p, nil
}

// MemTokens is an in-memory session.TokenStore.
type MemTokens struct {
	mu     sync.Mutex
	stored *service.Identity
	// SaveErr is returned by Save when set.
	SaveErr error
}

// Load implements session.TokenStore.
func (m *MemTokens) Load() (service.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return service.Identity{}, errNotExist
	}
	return *m.stored, nil
}

// Save implements session.TokenStore.
func (m *MemTokens) Save(id service.Identity) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = &id
	return nil
}

// Clear implements session.TokenStore.
func (m *MemTokens) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

// Stored returns the persisted identity, if any.
func (m *MemTokens) Stored() (service.Identity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return service.Identity{}, false
	}
	return *m.stored, true
}

var errNotExist = fmt.Errorf("no stored session: %w", fs.ErrNotExist)
