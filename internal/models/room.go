package models

// RoomType classifies rooms for subject-type matching.
type RoomType string

const (
	RoomTypeLecture  RoomType = "LECTURE"
	RoomTypeLab      RoomType = "LAB"
	RoomTypeWorkshop RoomType = "WORKSHOP"
	RoomTypeFaculty  RoomType = "FACULTY"
	RoomTypeVirtual  RoomType = "VIRTUAL"
)

// RoomStatus marks whether a room can be scheduled.
type RoomStatus string

const (
	RoomStatusActive      RoomStatus = "ACTIVE"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
	RoomStatusRetired     RoomStatus = "RETIRED"
)

// Room represents a physical or virtual teaching space shared across courses.
type Room struct {
	ID       int64      `db:"id" json:"id"`
	Name     string     `db:"name" json:"name"`
	Capacity int        `db:"capacity" json:"capacity"`
	Type     RoomType   `db:"type" json:"type"`
	Building string     `db:"building" json:"building"`
	Floor    int        `db:"floor" json:"floor"`
	Status   RoomStatus `db:"status" json:"status"`
}
