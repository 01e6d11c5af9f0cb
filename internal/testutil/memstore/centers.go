package memstore

import (
	"context"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/internal/infra/storage/center"
)

// Centers реестр центров и аппаратов
type Centers struct{ s *Store }

func (s *Store) Centers() *Centers { return &Centers{s: s} }

func (r *Centers) Create(ctx context.Context, c *domain.Center) (*domain.Center, error) {
	err := r.s.lock("Centers.Create")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c.ID = r.s.nextID("centers")
	c.CreatedAt, c.UpdatedAt = r.s.now(), r.s.now()
	r.s.t.centers[c.ID] = *c
	return c, nil
}

func (r *Centers) GetByID(ctx context.Context, id int64) (*domain.Center, error) {
	err := r.s.lock("Centers.GetByID")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	c, ok := r.s.t.centers[id]
	if !ok {
		return nil, center.ErrCenterNotFound
	}
	return &c, nil
}

func (r *Centers) CreateAsset(ctx context.Context, a *domain.Asset) (*domain.Asset, error) {
	err := r.s.lock("Centers.CreateAsset")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	a.ID = r.s.nextID("assets")
	a.CreatedAt = r.s.now()
	r.s.t.assets[a.ID] = *a
	return a, nil
}

func (r *Centers) GetAsset(ctx context.Context, id int64) (*domain.Asset, error) {
	err := r.s.lock("Centers.GetAsset")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	a, ok := r.s.t.assets[id]
	if !ok {
		return nil, center.ErrAssetNotFound
	}
	return &a, nil
}

func (r *Centers) ListAssets(ctx context.Context, centerID int64, activeOnly bool) ([]*domain.Asset, error) {
	err := r.s.lock("Centers.ListAssets")
	defer r.s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	found := sortedValues(r.s.t.assets, func(a domain.Asset) bool {
		return a.CenterID == centerID && (!activeOnly || a.IsActive)
	})
	out := make([]*domain.Asset, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *Centers) CountActiveAssets(ctx context.Context, centerID int64) (int, error) {
	err := r.s.lock("Centers.CountActiveAssets")
	defer r.s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, a := range r.s.t.assets {
		if a.CenterID == centerID && a.IsActive {
			n++
		}
	}
	return n, nil
}
