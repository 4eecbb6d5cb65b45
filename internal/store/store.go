// Package store persists rooms, participants and transcript lines.
//
// Persistence is best-effort from the call path: in-call correctness
// outranks record accuracy, so callers log and swallow write failures.
package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Room is a call room with one owner and many participants.
type Room struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;size:128"`
	OwnerID      string `gorm:"size:64"`
	CreatedAt    time.Time
	Participants []Participant `gorm:"foreignKey:RoomID"`
}

// Participant records one user's membership in a room, unique per user+room.
type Participant struct {
	ID       uint   `gorm:"primaryKey"`
	RoomID   uint   `gorm:"index;uniqueIndex:idx_room_user"`
	UserID   string `gorm:"size:64;uniqueIndex:idx_room_user"`
	Name     string `gorm:"size:128"`
	JoinedAt time.Time
}

// TranscriptLine is one finalized utterance kept for end-of-call
// summarization.
type TranscriptLine struct {
	ID        uint   `gorm:"primaryKey"`
	RoomID    uint   `gorm:"index"`
	UserID    string `gorm:"size:64"`
	Text      string `gorm:"type:text"`
	CreatedAt time.Time
}

// Store wraps the relational datastore.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Room{}, &Participant{}, &TranscriptLine{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateRoom records a room, returning the existing record when the name is
// already taken.
func (s *Store) CreateRoom(ctx context.Context, name, ownerID string) (*Room, error) {
	room := Room{Name: name, OwnerID: ownerID, CreatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&room).Error
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	if room.ID == 0 {
		if err := s.db.WithContext(ctx).Where("name = ?", name).First(&room).Error; err != nil {
			return nil, fmt.Errorf("lookup room: %w", err)
		}
	}
	return &room, nil
}

// FindRoom looks a room up by name.
func (s *Store) FindRoom(ctx context.Context, name string) (*Room, error) {
	var room Room
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&room).Error; err != nil {
		return nil, fmt.Errorf("find room %q: %w", name, err)
	}
	return &room, nil
}

// AddParticipant records a user joining a room. Rejoining is a no-op.
func (s *Store) AddParticipant(ctx context.Context, roomID uint, userID, name string) error {
	p := Participant{RoomID: roomID, UserID: userID, Name: name, JoinedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "room_id"}, {Name: "user_id"}}, DoNothing: true}).
		Create(&p).Error
	if err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

// AppendTranscript stores one finalized utterance for later summarization.
func (s *Store) AppendTranscript(ctx context.Context, roomID uint, userID, text string) error {
	line := TranscriptLine{RoomID: roomID, UserID: userID, Text: text, CreatedAt: time.Now().UTC()}
	if err := s.db.WithContext(ctx).Create(&line).Error; err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

// Transcript returns a room's transcript lines in chronological order.
func (s *Store) Transcript(ctx context.Context, roomID uint) ([]TranscriptLine, error) {
	var lines []TranscriptLine
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at asc").
		Find(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	return lines, nil
}
