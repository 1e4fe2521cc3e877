package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mrsingh7112/campusmind-api/internal/models"
)

// RoomRepository reads and creates room records.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListActive returns rooms with ACTIVE status ordered by id. The service
// partitions them by type.
func (r *RoomRepository) ListActive(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, type, building, floor, status
FROM rooms WHERE status = 'ACTIVE' ORDER BY id ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}
	return rooms, nil
}

// FindByID fetches a room by ID.
func (r *RoomRepository) FindByID(ctx context.Context, id int64) (*models.Room, error) {
	const query = `SELECT id, name, capacity, type, building, floor, status FROM rooms WHERE id = $1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindFirstByType returns the lowest-id active room of the given type.
// Returns sql.ErrNoRows when none exists.
func (r *RoomRepository) FindFirstByType(ctx context.Context, roomType models.RoomType) (*models.Room, error) {
	const query = `SELECT id, name, capacity, type, building, floor, status
FROM rooms WHERE status = 'ACTIVE' AND type = $1 ORDER BY id ASC LIMIT 1`
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, roomType); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a room record and fills in its generated id. The
// generator uses this to materialize virtual rooms.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	const query = `INSERT INTO rooms (name, capacity, type, building, floor, status)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, room.Name, room.Capacity, room.Type, room.Building, room.Floor, room.Status)
	if err := row.Scan(&room.ID); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}
