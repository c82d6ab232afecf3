package collections

import (
	"context"
	"errors"
	"strings"

	"github.com/YFrancis10/MeMantra-sub001/internal/catalog"
)

var (
	ErrCollectionGone = errors.New("collection not found")
	ErrNotOwner       = errors.New("not the owner of this collection")
	ErrEmptyName      = errors.New("collection name is required")
	ErrMantraGone     = errors.New("mantra not found")
	ErrSavedImmutable = errors.New("the saved collection cannot be deleted")
)

// MantraLookup resolves active mantras; satisfied by catalog.Repo.
type MantraLookup interface {
	GetMantra(ctx context.Context, id uint64) (*catalog.Mantra, error)
}

type Service struct {
	repo    *Repo
	mantras MantraLookup
}

func NewService(repo *Repo, mantras MantraLookup) *Service {
	return &Service{repo: repo, mantras: mantras}
}

func (s *Service) ListForUser(ctx context.Context, userID uint64) ([]Collection, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) Create(ctx context.Context, userID uint64, name string) (*Collection, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrEmptyName
	}
	col := &Collection{UserID: userID, Name: strings.TrimSpace(name), Kind: KindCustom}
	if err := s.repo.Create(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// getOwned loads the collection and enforces ownership.
func (s *Service) getOwned(ctx context.Context, collectionID, userID uint64) (*Collection, error) {
	col, err := s.repo.Get(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if col == nil {
		return nil, ErrCollectionGone
	}
	if col.UserID != userID {
		return nil, ErrNotOwner
	}
	return col, nil
}

// Mantras returns the collection's mantras in the order they were added.
// Soft-deleted mantras drop out of the listing but keep their link rows.
func (s *Service) Mantras(ctx context.Context, collectionID, userID uint64) (*Collection, []catalog.Mantra, error) {
	col, err := s.getOwned(ctx, collectionID, userID)
	if err != nil {
		return nil, nil, err
	}
	links, err := s.repo.ListLinks(ctx, collectionID)
	if err != nil {
		return nil, nil, err
	}
	out := make([]catalog.Mantra, 0, len(links))
	for _, link := range links {
		m, err := s.mantras.GetMantra(ctx, link.MantraID)
		if err != nil {
			return nil, nil, err
		}
		if m != nil {
			out = append(out, *m)
		}
	}
	return col, out, nil
}

func (s *Service) Delete(ctx context.Context, collectionID, userID uint64) error {
	col, err := s.getOwned(ctx, collectionID, userID)
	if err != nil {
		return err
	}
	if col.Kind == KindSaved {
		return ErrSavedImmutable
	}
	return s.repo.Delete(ctx, collectionID)
}

// AddMantra links a mantra into an owned collection. Idempotent: re-adding an
// existing link reports added=false and writes nothing.
func (s *Service) AddMantra(ctx context.Context, collectionID, userID, mantraID uint64) (added bool, err error) {
	if _, err := s.getOwned(ctx, collectionID, userID); err != nil {
		return false, err
	}
	return s.link(ctx, collectionID, mantraID)
}

func (s *Service) link(ctx context.Context, collectionID, mantraID uint64) (bool, error) {
	m, err := s.mantras.GetMantra(ctx, mantraID)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, ErrMantraGone
	}

	existing, err := s.repo.FindLink(ctx, collectionID, mantraID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}
	if err := s.repo.InsertLink(ctx, &CollectionMantra{CollectionID: collectionID, MantraID: mantraID}); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) RemoveMantra(ctx context.Context, collectionID, userID, mantraID uint64) error {
	if _, err := s.getOwned(ctx, collectionID, userID); err != nil {
		return err
	}
	link, err := s.repo.FindLink(ctx, collectionID, mantraID)
	if err != nil {
		return err
	}
	if link == nil {
		return ErrMantraGone
	}
	return s.repo.DeleteLink(ctx, link.ID)
}

// SaveMantra puts a mantra into the user's saved collection, creating the
// collection lazily on first save. The find-or-create is not transactional,
// so two concurrent first saves can race and produce two saved collections.
// Saving twice is idempotent and reports saved=false.
func (s *Service) SaveMantra(ctx context.Context, userID, mantraID uint64) (saved bool, err error) {
	col, err := s.repo.FindByKind(ctx, userID, KindSaved)
	if err != nil {
		return false, err
	}
	if col == nil {
		col = &Collection{UserID: userID, Name: SavedCollectionName, Kind: KindSaved}
		if err := s.repo.Create(ctx, col); err != nil {
			return false, err
		}
	}
	return s.link(ctx, col.ID, mantraID)
}
