package collections

import "time"

const (
	// KindSaved marks the per-user "Saved Mantras" collection, created lazily
	// on first save. It is looked up by kind, not by name.
	KindSaved  = "saved"
	KindCustom = "custom"

	SavedCollectionName = "Saved Mantras"
)

type Collection struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"type:varchar(128);not null" json:"name"`
	Kind      string    `gorm:"type:varchar(16);not null;default:custom" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func (Collection) TableName() string { return "collections" }

type CollectionMantra struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	CollectionID uint64    `gorm:"not null;index:uniq_collection_mantra,unique,priority:1" json:"collection_id"`
	MantraID     uint64    `gorm:"not null;index:uniq_collection_mantra,unique,priority:2" json:"mantra_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CollectionMantra) TableName() string { return "collection_mantras" }
