package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PetType enumerates the drawable pet species.
type PetType string

const (
	PetTypeDog PetType = "dog"
	PetTypeCat PetType = "cat"
)

// Valid reports whether t is one of the known species.
func (t PetType) Valid() bool {
	return t == PetTypeDog || t == PetTypeCat
}

// DefaultPetPosition is used when a creation request omits the position.
var DefaultPetPosition = Position{X: 100, Y: 100}

// Position is a 2-D park coordinate, persisted as a JSON text column.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *Position) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	case nil:
		*p = Position{}
		return nil
	default:
		return fmt.Errorf("position: cannot scan %T", src)
	}
}

// JSONText stores an opaque structured JSON blob (the drawing payload) in a
// text column while keeping its structure on the wire.
type JSONText []byte

func (j JSONText) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return []byte(j), nil
}

func (j *JSONText) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
		return nil
	case string:
		*j = JSONText(v)
		return nil
	case nil:
		*j = nil
		return nil
	default:
		return fmt.Errorf("jsontext: cannot scan %T", src)
	}
}

func (j JSONText) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONText) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

// IsEmpty reports whether the blob carries no structural content
// (absent, JSON null, or an empty object).
func (j JSONText) IsEmpty() bool {
	if len(j) == 0 {
		return true
	}
	var probe interface{}
	if err := json.Unmarshal(j, &probe); err != nil {
		return true
	}
	switch v := probe.(type) {
	case nil:
		return true
	case map[string]interface{}:
		return len(v) == 0
	default:
		return false
	}
}

// Pet is a drawn creature living in a room. Pets are exclusively owned by
// their creating user and are never deleted in normal operation.
type Pet struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;index" json:"userId"`
	RoomID      string    `gorm:"size:36;not null;index" json:"roomId"`
	DrawingData JSONText  `gorm:"type:text;not null" json:"drawingData"`
	ImageData   *string   `gorm:"type:mediumtext" json:"imageData,omitempty"`
	Type        PetType   `gorm:"size:10;not null" json:"type"`
	Position    Position  `gorm:"type:text;not null" json:"position"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
