package local

import (
	"encoding/json"
	"fmt"
	"time"

	"tourops/internal/model"

	"gorm.io/datatypes"
)

// document is one row of a kind table. The record itself lives in Body; the
// other columns exist for the unique index and for filtering.
type document struct {
	ID        string         `gorm:"type:varchar(36);primaryKey"`
	NameKey   string         `gorm:"type:varchar(255);not null"`
	Status    string         `gorm:"type:varchar(20);not null"`
	SortKey   string         `gorm:"type:varchar(255)"`
	Body      datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:false"`
}

type keyRow struct {
	ID      string
	NameKey string
}

func encodeMaster(item model.Master) (document, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return document{}, fmt.Errorf("encode %s: %w", item.EntityKind(), err)
	}
	b := item.Meta()
	return document{
		ID:        b.ID.String(),
		NameKey:   b.NameKey,
		Status:    string(b.Status),
		SortKey:   b.NameKey,
		Body:      body,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}, nil
}

func decodeMaster(doc document, into model.Master) error {
	if err := json.Unmarshal(doc.Body, into); err != nil {
		return fmt.Errorf("decode %s %s: %w", into.EntityKind(), doc.ID, err)
	}
	into.Meta().NameKey = doc.NameKey
	return nil
}

func encodeTour(t *model.Tour) (document, error) {
	body, err := json.Marshal(t)
	if err != nil {
		return document{}, fmt.Errorf("encode tour: %w", err)
	}
	return document{
		ID:        t.ID.String(),
		NameKey:   t.TourCodeKey,
		Status:    string(t.Status),
		SortKey:   t.StartDate.Format(time.DateOnly),
		Body:      body,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

func decodeTour(doc document) (*model.Tour, error) {
	var t model.Tour
	if err := json.Unmarshal(doc.Body, &t); err != nil {
		return nil, fmt.Errorf("decode tour %s: %w", doc.ID, err)
	}
	t.TourCodeKey = doc.NameKey
	t.EnsureLineItems()
	return &t, nil
}

// values is the column set written by an update.
func (d document) values() map[string]any {
	return map[string]any{
		"name_key":   d.NameKey,
		"status":     d.Status,
		"sort_key":   d.SortKey,
		"body":       d.Body,
		"updated_at": d.UpdatedAt,
	}
}
