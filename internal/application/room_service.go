package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// RoomStore captures the persistence operations needed by the room service.
type RoomStore interface {
	CreateRoom(ctx context.Context, room persistence.Room) error
	GetRoom(ctx context.Context, id string) (persistence.Room, error)
	UpdateRoom(ctx context.Context, room persistence.Room) error
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]persistence.Room, error)
}

// RoomService orchestrates validation, authorization, and persistence for rooms.
type RoomService struct {
	rooms       RoomStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomStore, idGenerator func() string, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *RoomService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &RoomService{rooms: rooms, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// CreateRoom validates input and persists a new active room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to create room", "room created", "room_id", room.ID)
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	input := RoomInput{
		Name:        strings.TrimSpace(params.Input.Name),
		Description: normalizeOptionalString(params.Input.Description),
	}
	if vErr := validateInput(input, roomMessages, "Invalid data"); vErr != nil {
		err = vErr
		return
	}

	now := s.now()
	room = Room{
		ID:          s.idGenerator(),
		Name:        input.Name,
		Description: input.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err = s.rooms.CreateRoom(ctx, roomToRecord(room)); err != nil {
		err = mapRoomRepoError(err)
		room = Room{}
		return
	}
	return
}

// UpdateRoom applies a partial update to an existing room for administrators.
// A description that trims to empty clears the stored description.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_id", params.Principal.UserID,
		"room_id", params.RoomID,
	)
	defer func() {
		logOutcome(ctx, logger, err, "failed to update room", "room updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	patch := params.Patch
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		patch.Description = &trimmed
	}
	if vErr := validateInput(patch, roomMessages, "Invalid data"); vErr != nil {
		err = vErr
		return
	}

	var existing persistence.Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	updated := existing
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = normalizeOptionalString(patch.Description)
	}
	if patch.IsActive != nil {
		updated.IsActive = *patch.IsActive
	}
	updated.UpdatedAt = s.now()

	if err = s.rooms.UpdateRoom(ctx, updated); err != nil {
		err = mapRoomRepoError(err)
		return
	}

	room = roomFromRecord(updated)
	return
}

// DeleteRoom removes an existing room and its bookings when requested by an administrator.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) error {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if !principal.IsAdmin() {
		return ErrUnauthorized
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_id", principal.UserID,
		"room_id", roomID,
	)

	if err := s.rooms.DeleteRoom(ctx, roomID); err != nil {
		err = mapRoomRepoError(err)
		logger.WarnContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "room deleted")
	return nil
}

// GetRoom returns a single room.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (Room, error) {
	if s == nil || s.rooms == nil {
		return Room{}, fmt.Errorf("room repository not configured")
	}
	record, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, mapRoomRepoError(err)
	}
	return roomFromRecord(record), nil
}

// ListRooms returns rooms ordered by name. Administrators also see inactive rooms.
func (s *RoomService) ListRooms(ctx context.Context, principal Principal) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListRooms",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	rooms, err = s.listRooms(ctx, !principal.IsAdmin())
	return
}

// ListActiveRooms returns the rooms open for booking, ordered by name.
func (s *RoomService) ListActiveRooms(ctx context.Context) ([]Room, error) {
	if s == nil {
		return nil, fmt.Errorf("RoomService is nil")
	}
	return s.listRooms(ctx, true)
}

func (s *RoomService) listRooms(ctx context.Context, activeOnly bool) ([]Room, error) {
	if s.rooms == nil {
		return nil, fmt.Errorf("room repository not configured")
	}
	records, err := s.rooms.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	rooms := make([]Room, 0, len(records))
	for _, record := range records {
		if activeOnly && !record.IsActive {
			continue
		}
		rooms = append(rooms, roomFromRecord(record))
	}
	return rooms, nil
}

func mapRoomRepoError(err error) error {
	if errors.Is(err, persistence.ErrConstraintViolation) {
		return invalid("Invalid data")
	}
	return notFound("Room", err)
}
