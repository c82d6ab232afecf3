package collections

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) ListForUser(ctx context.Context, userID uint64) ([]Collection, error) {
	var out []Collection
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns (nil, nil) when the collection does not exist.
func (r *Repo) Get(ctx context.Context, id uint64) (*Collection, error) {
	var col Collection
	err := r.db.WithContext(ctx).First(&col, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

// FindByKind returns (nil, nil) when the user has no collection of that kind.
func (r *Repo) FindByKind(ctx context.Context, userID uint64, kind string) (*Collection, error) {
	var col Collection
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		First(&col).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

func (r *Repo) Create(ctx context.Context, col *Collection) error {
	return r.db.WithContext(ctx).Create(col).Error
}

// Delete removes the collection's links first, then the collection row.
func (r *Repo) Delete(ctx context.Context, id uint64) error {
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", id).
		Delete(&CollectionMantra{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&Collection{}, id).Error
}

// FindLink returns (nil, nil) when the mantra is not in the collection.
func (r *Repo) FindLink(ctx context.Context, collectionID, mantraID uint64) (*CollectionMantra, error) {
	var link CollectionMantra
	err := r.db.WithContext(ctx).
		Where("collection_id = ? AND mantra_id = ?", collectionID, mantraID).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *Repo) InsertLink(ctx context.Context, link *CollectionMantra) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *Repo) DeleteLink(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&CollectionMantra{}, id).Error
}

func (r *Repo) ListLinks(ctx context.Context, collectionID uint64) ([]CollectionMantra, error) {
	var out []CollectionMantra
	if err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) CountLinks(ctx context.Context, collectionID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&CollectionMantra{}).
		Where("collection_id = ?", collectionID).
		Count(&n).Error
	return n, err
}
