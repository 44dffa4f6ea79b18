package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// memoryStore is a map backed persistence.Store used by the service tests.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]persistence.User
	rooms    map[string]persistence.Room
	bookings map[string]persistence.Booking
	codes    map[string]persistence.VerificationCode
	settings *persistence.Settings

	err       error
	saveCalls int
}

var _ persistence.Store = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:    make(map[string]persistence.User),
		rooms:    make(map[string]persistence.Room),
		bookings: make(map[string]persistence.Booking),
		codes:    make(map[string]persistence.VerificationCode),
	}
}

func (m *memoryStore) Ping(context.Context) error { return m.err }
func (m *memoryStore) Close() error               { return nil }

func (m *memoryStore) CreateUser(_ context.Context, user persistence.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return persistence.ErrDuplicate
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memoryStore) GetUser(_ context.Context, id string) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.User{}, m.err
	}
	user, ok := m.users[id]
	if !ok {
		return persistence.User{}, persistence.ErrNotFound
	}
	return user, nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.User{}, m.err
	}
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return persistence.User{}, persistence.ErrNotFound
}

func (m *memoryStore) ListUsers(context.Context) ([]persistence.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	users := make([]persistence.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (m *memoryStore) CountUsers(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	return len(m.users), nil
}

func (m *memoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.users, id)
	for bookingID, b := range m.bookings {
		if b.UserID == id {
			delete(m.bookings, bookingID)
		}
	}
	return nil
}

func (m *memoryStore) CreateRoom(_ context.Context, room persistence.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *memoryStore) UpdateRoom(_ context.Context, room persistence.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rooms[room.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *memoryStore) GetRoom(_ context.Context, id string) (persistence.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.Room{}, m.err
	}
	room, ok := m.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return room, nil
}

func (m *memoryStore) ListRooms(context.Context) ([]persistence.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	rooms := make([]persistence.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		rooms = append(rooms, room)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (m *memoryStore) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.rooms, id)
	for bookingID, b := range m.bookings {
		if b.RoomID == id {
			delete(m.bookings, bookingID)
		}
	}
	return nil
}

func (m *memoryStore) CreateBookingExclusive(_ context.Context, booking persistence.Booking, check persistence.OverlapCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rooms[booking.RoomID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	var existing []persistence.Booking
	for _, other := range m.bookings {
		if other.RoomID == booking.RoomID && other.StartTime.Before(booking.EndTime) && other.EndTime.After(booking.StartTime) {
			existing = append(existing, other)
		}
	}
	if check != nil {
		if err := check(existing); err != nil {
			return err
		}
	}
	m.bookings[booking.ID] = booking
	return nil
}

func (m *memoryStore) GetBooking(_ context.Context, id string) (persistence.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.Booking{}, m.err
	}
	b, ok := m.bookings[id]
	if !ok {
		return persistence.Booking{}, persistence.ErrNotFound
	}
	return b, nil
}

func (m *memoryStore) ListBookings(_ context.Context, filter persistence.BookingFilter) ([]persistence.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var details []persistence.BookingDetail
	for _, b := range m.bookings {
		if filter.RoomID != "" && b.RoomID != filter.RoomID {
			continue
		}
		if filter.StartsBefore != nil && !b.StartTime.Before(*filter.StartsBefore) {
			continue
		}
		if filter.EndsAfter != nil && !b.EndTime.After(*filter.EndsAfter) {
			continue
		}
		user := m.users[b.UserID]
		room := m.rooms[b.RoomID]
		details = append(details, persistence.BookingDetail{
			Booking:     b,
			UserName:    user.Name,
			UserSurname: user.Surname,
			UserEmail:   user.Email,
			RoomName:    room.Name,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].StartTime.Before(details[j].StartTime) })
	return details, nil
}

func (m *memoryStore) DeleteBooking(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.bookings[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *memoryStore) UpsertVerificationCode(_ context.Context, code persistence.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.codes[code.Email] = code
	return nil
}

func (m *memoryStore) GetVerificationCode(_ context.Context, email string) (persistence.VerificationCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.VerificationCode{}, m.err
	}
	code, ok := m.codes[email]
	if !ok {
		return persistence.VerificationCode{}, persistence.ErrNotFound
	}
	return code, nil
}

func (m *memoryStore) DeleteVerificationCode(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.codes, email)
	return nil
}

func (m *memoryStore) DeleteExpiredVerificationCodes(_ context.Context, reference time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var removed int64
	for email, code := range m.codes {
		if !code.ExpiresAt.After(reference) {
			delete(m.codes, email)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryStore) GetSettings(context.Context) (persistence.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return persistence.Settings{}, m.err
	}
	if m.settings == nil {
		return persistence.Settings{}, persistence.ErrNotFound
	}
	copied := *m.settings
	copied.WorkDays = append([]int(nil), m.settings.WorkDays...)
	return copied, nil
}

func (m *memoryStore) SaveSettings(_ context.Context, settings persistence.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	copied := settings
	copied.WorkDays = append([]int(nil), settings.WorkDays...)
	m.settings = &copied
	m.saveCalls++
	return nil
}

func (m *memoryStore) addUser(id, email string, role Role, createdAt time.Time) persistence.User {
	user := persistence.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash:secret",
		Name:         "Name-" + id,
		Surname:      "Surname-" + id,
		Role:         string(role),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	m.users[id] = user
	return user
}

func (m *memoryStore) addRoom(id, name string, active bool) persistence.Room {
	room := persistence.Room{ID: id, Name: name, IsActive: active}
	m.rooms[id] = room
	return room
}

func (m *memoryStore) addBooking(id, roomID, userID string, start time.Time, minutes int) persistence.Booking {
	b := persistence.Booking{
		ID:        id,
		RoomID:    roomID,
		UserID:    userID,
		StartTime: start,
		EndTime:   start.Add(time.Duration(minutes) * time.Minute),
		CreatedAt: start,
	}
	m.bookings[id] = b
	return b
}

// fakeHash and fakeVerify replace bcrypt to keep tests fast.
func fakeHash(password string) (string, error) {
	return "hash:" + password, nil
}

func fakeVerify(hashed, password string) error {
	if hashed != "hash:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func adminPrincipal() Principal {
	return Principal{UserID: "admin", Email: "admin@example.com", Role: RoleAdmin}
}

func userPrincipal(id string) Principal {
	return Principal{UserID: id, Email: id + "@example.com", Role: RoleUser}
}
