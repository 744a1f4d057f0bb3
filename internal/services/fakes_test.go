package services

import (
	"context"
	"sync"
	"time"

	"github.com/weatherbook/webapp/internal/store"
	"github.com/weatherbook/webapp/internal/weather"
	"github.com/weatherbook/webapp/types"
)

// fakeUserRepo is an in-memory UserRepository enforcing the same
// uniqueness the postgres schema does.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int]types.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrDuplicateUsername
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.PasswordHash = passwordHash
	r.users[id] = user
	return nil
}

// fakeCityRepo mirrors the storage-level unique constraint on
// (user_id, city_name): the insert itself is the arbiter, under one
// lock, exactly like the database.
type fakeCityRepo struct {
	mu     sync.Mutex
	nextID int
	cities map[int]types.City
}

func newFakeCityRepo() *fakeCityRepo {
	return &fakeCityRepo{nextID: 1, cities: make(map[int]types.City)}
}

func (r *fakeCityRepo) ListByUser(_ context.Context, userID int) ([]types.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cities []types.City
	for _, city := range r.cities {
		if city.UserID == userID {
			cities = append(cities, city)
		}
	}
	return cities, nil
}

func (r *fakeCityRepo) Get(_ context.Context, id int) (types.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	city, ok := r.cities[id]
	if !ok {
		return types.City{}, store.ErrNotFound
	}
	return city, nil
}

func (r *fakeCityRepo) Create(_ context.Context, city types.City) (types.City, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.cities {
		if existing.UserID == city.UserID && existing.Name == city.Name {
			return types.City{}, store.ErrDuplicateCity
		}
	}
	city.ID = r.nextID
	r.nextID++
	r.cities[city.ID] = city
	return city, nil
}

func (r *fakeCityRepo) UpdateSnapshot(_ context.Context, id int, temperature, icon, description string, fetchedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	city, ok := r.cities[id]
	if !ok {
		return store.ErrNotFound
	}
	city.Temperature = temperature
	city.Icon = icon
	city.Description = description
	city.FetchedAt = fetchedAt
	r.cities[id] = city
	return nil
}

func (r *fakeCityRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cities[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.cities, id)
	return nil
}

// fakeFetcher returns a canned snapshot or a fixed error.
type fakeFetcher struct {
	snapshot weather.Snapshot
	err      error
}

func (f *fakeFetcher) FetchByCityName(_ context.Context, _ string) (weather.Snapshot, error) {
	if f.err != nil {
		return weather.Snapshot{}, f.err
	}
	return f.snapshot, nil
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
