package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Requester is the authenticated identity passed into every service
// operation. Ownership checks re-derive permission from it at call time.
type Requester struct {
	ID   uuid.UUID
	Role Role
}

func (r Requester) IsAdmin() bool        { return r.Role == RoleAdmin }
func (r Requester) IsPractitioner() bool { return r.Role == RolePractitioner }

// jsonValue and jsonScan back the document-style nested fields that are
// persisted as JSONB columns.
func jsonValue(v interface{}) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonScan(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported scan type %T", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}

// StringList is a JSONB-backed list of strings
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *StringList) Scan(src interface{}) error  { return jsonScan(src, l) }
