// Package testutil provides in-memory test doubles for the storage
// and mail collaborators.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/avdeyev/taskboard/internal/models"
	"github.com/avdeyev/taskboard/internal/storage"
)

// FakeUserStore is an in-memory storage.UserStore.
type FakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*models.User

	// Error injection
	CreateUserErr error
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{
		users: make(map[int64]*models.User),
	}
}

func (f *FakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateUserErr != nil {
		return f.CreateUserErr
	}

	for _, u := range f.users {
		if u.Username == user.Username {
			return storage.ErrUsernameTaken
		}
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return storage.ErrEmailTaken
		}
	}

	f.nextID++
	user.ID = f.nextID

	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *FakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[id]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *FakeUserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *FakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

// DeleteUser removes a user directly, bypassing the service layer.
// Used to simulate tokens whose user no longer exists.
func (f *FakeUserStore) DeleteUser(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

// FakeTaskStore is an in-memory storage.TaskStore. Listing orders by
// (position, id) like the real store.
type FakeTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*models.Task

	// Error injection
	CreateTaskErr error
	ListTasksErr  error
}

func NewFakeTaskStore() *FakeTaskStore {
	return &FakeTaskStore{
		tasks: make(map[int64]*models.Task),
	}
}

func (f *FakeTaskStore) CreateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.CreateTaskErr != nil {
		return f.CreateTaskErr
	}

	maxPos := 0
	for _, t := range f.tasks {
		if t.UserID == task.UserID && t.Position > maxPos {
			maxPos = t.Position
		}
	}
	task.Position = maxPos + 1

	f.nextID++
	task.ID = f.nextID

	stored := *task
	f.tasks[task.ID] = &stored
	return nil
}

func (f *FakeTaskStore) GetTask(_ context.Context, id, userID int64) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return nil, storage.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (f *FakeTaskStore) ListTasks(_ context.Context, userID int64) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}

	tasks := make([]*models.Task, 0)
	for _, task := range f.tasks {
		if task.UserID == userID {
			clone := *task
			tasks = append(tasks, &clone)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Position != tasks[j].Position {
			return tasks[i].Position < tasks[j].Position
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (f *FakeTaskStore) UpdateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return storage.ErrTaskNotFound
	}
	clone := *task
	f.tasks[task.ID] = &clone
	return nil
}

func (f *FakeTaskStore) SetTaskPosition(_ context.Context, id, userID int64, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		// Silent skip, like the SQL UPDATE matching zero rows.
		return nil
	}
	task.Position = position
	return nil
}

func (f *FakeTaskStore) DeleteTask(_ context.Context, id, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok || task.UserID != userID {
		return storage.ErrTaskNotFound
	}
	delete(f.tasks, id)
	return nil
}
