package catalog

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrMantraGone   = errors.New("mantra not found")
	ErrCategoryGone = errors.New("category not found")
	ErrEmptyText    = errors.New("mantra text is required")
	ErrEmptyName    = errors.New("category name is required")
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	cat := &Category{Name: strings.TrimSpace(name)}
	if err := s.repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uint64, name string) (*Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, ErrCategoryGone
	}
	cat.Name = strings.TrimSpace(name)
	if err := s.repo.UpdateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id uint64) error {
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return ErrCategoryGone
	}
	return s.repo.DeleteCategory(ctx, id)
}

// ListMantras returns active mantras with like counts, optionally filtered by
// category. One count query per mantra; the catalog is small.
func (s *Service) ListMantras(ctx context.Context, userID uint64, categoryID *uint64) ([]MantraView, error) {
	mantras, err := s.repo.ListMantras(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	out := make([]MantraView, 0, len(mantras))
	for _, m := range mantras {
		view, err := s.view(ctx, m, userID)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) GetMantra(ctx context.Context, userID, id uint64) (*MantraView, error) {
	m, err := s.repo.GetMantra(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMantraGone
	}
	view, err := s.view(ctx, *m, userID)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

func (s *Service) view(ctx context.Context, m Mantra, userID uint64) (MantraView, error) {
	n, err := s.repo.CountLikes(ctx, m.ID)
	if err != nil {
		return MantraView{}, err
	}
	view := MantraView{Mantra: m, LikeCount: n}
	if userID != 0 {
		like, err := s.repo.FindLike(ctx, userID, m.ID)
		if err != nil {
			return MantraView{}, err
		}
		view.Liked = like != nil
	}
	return view, nil
}

func (s *Service) CreateMantra(ctx context.Context, text, author string, categoryID *uint64) (*Mantra, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if categoryID != nil {
		cat, err := s.repo.GetCategory(ctx, *categoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrCategoryGone
		}
	}
	m := &Mantra{Text: strings.TrimSpace(text), Author: strings.TrimSpace(author), CategoryID: categoryID}
	if err := s.repo.CreateMantra(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) UpdateMantra(ctx context.Context, id uint64, text, author string, categoryID *uint64) (*Mantra, error) {
	m, err := s.repo.GetMantra(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMantraGone
	}
	if strings.TrimSpace(text) != "" {
		m.Text = strings.TrimSpace(text)
	}
	if author != "" {
		m.Author = strings.TrimSpace(author)
	}
	if categoryID != nil {
		cat, err := s.repo.GetCategory(ctx, *categoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, ErrCategoryGone
		}
		m.CategoryID = categoryID
	}
	if err := s.repo.UpdateMantra(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) DeleteMantra(ctx context.Context, id uint64) error {
	existed, err := s.repo.SoftDeleteMantra(ctx, id)
	if err != nil {
		return err
	}
	if !existed {
		return ErrMantraGone
	}
	return nil
}

// ToggleLike adds the user's like if absent, removes it if present.
func (s *Service) ToggleLike(ctx context.Context, userID, mantraID uint64) (added bool, err error) {
	m, err := s.repo.GetMantra(ctx, mantraID)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, ErrMantraGone
	}

	existing, err := s.repo.FindLike(ctx, userID, mantraID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		if err := s.repo.DeleteLike(ctx, existing.ID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.repo.InsertLike(ctx, &Like{UserID: userID, MantraID: mantraID}); err != nil {
		return false, err
	}
	return true, nil
}
