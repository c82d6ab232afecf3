package catalog

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

func (r *Repo) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *Repo) GetCategory(ctx context.Context, id uint64) (*Category, error) {
	var cat Category
	err := r.db.WithContext(ctx).First(&cat, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *Repo) CreateCategory(ctx context.Context, cat *Category) error {
	return r.db.WithContext(ctx).Create(cat).Error
}

func (r *Repo) UpdateCategory(ctx context.Context, cat *Category) error {
	return r.db.WithContext(ctx).Save(cat).Error
}

func (r *Repo) DeleteCategory(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&Category{}, id).Error
}

// ListMantras skips soft-deleted rows.
func (r *Repo) ListMantras(ctx context.Context, categoryID *uint64) ([]Mantra, error) {
	q := r.db.WithContext(ctx).Where("deleted = ?", false)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	var out []Mantra
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetMantra returns (nil, nil) for missing or soft-deleted mantras.
func (r *Repo) GetMantra(ctx context.Context, id uint64) (*Mantra, error) {
	var m Mantra
	err := r.db.WithContext(ctx).Where("deleted = ?", false).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repo) CreateMantra(ctx context.Context, m *Mantra) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *Repo) UpdateMantra(ctx context.Context, m *Mantra) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// SoftDeleteMantra marks the row deleted without removing it.
func (r *Repo) SoftDeleteMantra(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Mantra{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repo) FindLike(ctx context.Context, userID, mantraID uint64) (*Like, error) {
	var l Like
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND mantra_id = ?", userID, mantraID).
		First(&l).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *Repo) InsertLike(ctx context.Context, l *Like) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *Repo) DeleteLike(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&Like{}, id).Error
}

func (r *Repo) CountLikes(ctx context.Context, mantraID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Like{}).
		Where("mantra_id = ?", mantraID).
		Count(&n).Error
	return n, err
}
