package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	_ "github.com/lib/pq"

	"github.com/m04kA/SMC-DialysisService/internal/config"
	"github.com/m04kA/SMC-DialysisService/internal/domain"
	centerRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/center"
	inventoryRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/inventory"
	noteRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/note"
	sessionRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/session"
	inventoryService "github.com/m04kA/SMC-DialysisService/internal/service/inventory"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
	"github.com/m04kA/SMC-DialysisService/pkg/ptr"
	"github.com/m04kA/SMC-DialysisService/pkg/txmanager"
)

// seedUserID автор демо-данных
const seedUserID = 1

var noteTypes = []domain.NoteType{
	{Code: "BP_PRE", Name: "Давление до сеанса", IsMandatory: true},
	{Code: "BP_POST", Name: "Давление после сеанса", IsMandatory: true},
	{Code: "WEIGHT_PRE", Name: "Вес до сеанса", IsMandatory: true},
	{Code: "WEIGHT_POST", Name: "Вес после сеанса", IsMandatory: true},
	{Code: "UF_VOLUME", Name: "Объем ультрафильтрации", IsMandatory: false},
	{Code: "VASCULAR_ACCESS", Name: "Состояние сосудистого доступа", IsMandatory: false},
}

var catalog = []domain.InventoryItem{
	{Name: "Диализатор", MinUsage: 1, MaxUsage: 5, IsIndividuallyTracked: true, IsMandatory: true,
		RequiresApprovalForEarlyDiscard: true, RequiresApprovalForOveruse: true},
	{Name: "Кровопроводящие магистрали", MinUsage: 1, MaxUsage: 1, IsMandatory: true},
	{Name: "Фистульные иглы", MinUsage: 1, MaxUsage: 1, IsMandatory: true},
	{Name: "Бикарбонатный картридж", MinUsage: 1, MaxUsage: 1},
	{Name: "Гепарин 5000 ЕД", MinUsage: 1, MaxUsage: 1},
}

// Использование: seed [число центров]
func main() {
	centers := 3
	if len(os.Args) >= 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n <= 0 {
			fmt.Printf("invalid centers count %q\n", os.Args[1])
			os.Exit(1)
		}
		centers = n
	}

	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New("", cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("open db: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("ping db: %v", err)
	}

	redisClient, err := locker.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("connect redis: %v", err)
	}
	defer redisClient.Close()

	// метрики не собираются: nil-коллектор допустим во всех методах
	var collector *metrics.Metrics
	wrappedDB := dbmetrics.Wrap(db, collector)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	s := &seeder{
		faker:   gofakeit.New(uint64(time.Now().UnixNano())),
		centers: centerRepo.NewRepository(wrappedDB),
		notes:   noteRepo.NewRepository(wrappedDB),
		items:   inventoryRepo.NewRepository(wrappedDB),
		log:     log,
	}
	s.stock = inventoryService.NewService(
		s.items,
		sessionRepo.NewRepository(wrappedDB),
		s.centers,
		txMgr,
		locker.NewRedisLocker(redisClient, locker.DefaultConfig(), collector),
		collector,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.run(ctx, centers); err != nil {
		log.Fatal("seed: %v", err)
	}
	log.Info("seed complete")
}

type seeder struct {
	faker   *gofakeit.Faker
	centers *centerRepo.Repository
	notes   *noteRepo.Repository
	items   *inventoryRepo.Repository
	stock   *inventoryService.Service
	log     *logger.Logger
}

func (s *seeder) run(ctx context.Context, centerCount int) error {
	for i := range noteTypes {
		if _, err := s.notes.CreateNoteType(ctx, &noteTypes[i]); err != nil {
			return fmt.Errorf("note type %s: %w", noteTypes[i].Code, err)
		}
	}
	s.log.Info("note types seeded: %d", len(noteTypes))

	items := make([]*domain.InventoryItem, 0, len(catalog))
	for i := range catalog {
		item, err := s.items.CreateItem(ctx, &catalog[i])
		if err != nil {
			return fmt.Errorf("inventory item %q: %w", catalog[i].Name, err)
		}
		items = append(items, item)
	}
	s.log.Info("inventory catalog seeded: %d items", len(items))

	for i := 0; i < centerCount; i++ {
		center, err := s.seedCenter(ctx, int64(i+1))
		if err != nil {
			return err
		}
		for _, item := range items {
			if err := s.seedStock(ctx, center.ID, item); err != nil {
				return err
			}
		}
		s.log.Info("center %d seeded (%s)", center.ID, center.Name)
	}
	return nil
}

func (s *seeder) seedCenter(ctx context.Context, companyID int64) (*domain.Center, error) {
	open := s.faker.Number(6, 8) * 60
	center, err := s.centers.Create(ctx, &domain.Center{
		CompanyID: companyID,
		Name:      fmt.Sprintf("%s, %s", s.faker.Company(), s.faker.City()),
		Config: domain.CenterConfig{
			OpenMinute:          open,
			CloseMinute:         open + s.faker.Number(12, 14)*60,
			SlotDurationMinutes: 60,
		},
		IsActive: true,
	})
	if err != nil {
		return nil, fmt.Errorf("center: %w", err)
	}

	machines := s.faker.Number(4, 12)
	for n := 1; n <= machines; n++ {
		if _, err := s.centers.CreateAsset(ctx, &domain.Asset{
			CenterID: center.ID,
			Name:     fmt.Sprintf("Аппарат %02d (%s)", n, s.faker.Regex("[A-Z]{2}-[0-9]{4}")),
			IsActive: true,
		}); err != nil {
			return nil, fmt.Errorf("asset %d of center %d: %w", n, center.ID, err)
		}
	}
	return center, nil
}

func (s *seeder) seedStock(ctx context.Context, centerID int64, item *domain.InventoryItem) error {
	quantity := s.faker.Number(20, 200)
	if item.IsIndividuallyTracked {
		quantity = s.faker.Number(5, 20)
	}
	expiry := time.Now().AddDate(0, s.faker.Number(3, 24), 0)

	_, err := s.stock.AddStock(ctx, &inventoryService.AddStockRequest{
		ItemID:      item.ID,
		CenterID:    centerID,
		Quantity:    quantity,
		BatchNumber: ptr.Ptr(s.faker.Regex("LOT-[0-9]{6}")),
		ExpiryDate:  ptr.Ptr(domain.TruncateDate(expiry)),
		ReceivedBy:  seedUserID,
	})
	if err != nil {
		return fmt.Errorf("stock of item %d at center %d: %w", item.ID, centerID, err)
	}
	return nil
}
