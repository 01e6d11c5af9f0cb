package memstore

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-DialysisService/internal/domain"
	"github.com/m04kA/SMC-DialysisService/pkg/types"
)

// SeedCenter создает активный центр с окном open-close и machines активными аппаратами
func (s *Store) SeedCenter(open, close string, slotMinutes, machines int) (*domain.Center, []*domain.Asset) {
	cfg, err := domain.NewCenterConfig(types.TimeString(open), types.TimeString(close), slotMinutes)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	c, _ := s.Centers().Create(ctx, &domain.Center{CompanyID: 10, Name: "Center", Config: cfg, IsActive: true})

	assets := make([]*domain.Asset, 0, machines)
	for i := 0; i < machines; i++ {
		a, _ := s.Centers().CreateAsset(ctx, &domain.Asset{CenterID: c.ID, Name: fmt.Sprintf("HD-%02d", i+1), IsActive: true})
		assets = append(assets, a)
	}

	return c, assets
}
