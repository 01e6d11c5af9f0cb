package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-DialysisService/internal/api"
	appointmentsHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/appointments"
	assignmentsHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/assignments"
	capacityHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/capacity"
	inventoryHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/inventory"
	sessionsHandler "github.com/m04kA/SMC-DialysisService/internal/api/handlers/sessions"
	"github.com/m04kA/SMC-DialysisService/internal/config"
	appointmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/appointment"
	assignmentRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/assignment"
	centerRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/center"
	inventoryRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/inventory"
	noteRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/note"
	sessionRepo "github.com/m04kA/SMC-DialysisService/internal/infra/storage/session"
	patientServiceClient "github.com/m04kA/SMC-DialysisService/internal/integrations/patientservice"
	appointmentsService "github.com/m04kA/SMC-DialysisService/internal/service/appointments"
	assignmentsService "github.com/m04kA/SMC-DialysisService/internal/service/assignments"
	capacityService "github.com/m04kA/SMC-DialysisService/internal/service/capacity"
	cyclesService "github.com/m04kA/SMC-DialysisService/internal/service/cycles"
	inventoryService "github.com/m04kA/SMC-DialysisService/internal/service/inventory"
	sessionsService "github.com/m04kA/SMC-DialysisService/internal/service/sessions"
	bookAppointmentUC "github.com/m04kA/SMC-DialysisService/internal/usecase/book_appointment"
	rescheduleAppointmentUC "github.com/m04kA/SMC-DialysisService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-DialysisService/pkg/dbmetrics"
	"github.com/m04kA/SMC-DialysisService/pkg/locker"
	"github.com/m04kA/SMC-DialysisService/pkg/logger"
	"github.com/m04kA/SMC-DialysisService/pkg/metrics"
	"github.com/m04kA/SMC-DialysisService/pkg/txmanager"
)

func main() {
	configPath := "config.toml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-DialysisService...")
	log.Info("Configuration loaded from %s", configPath)

	// Метрики (если включены); nil-коллектор везде допустим
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Redis для распределенных блокировок
	redisClient, err := locker.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	lock := locker.NewRedisLocker(redisClient, locker.Config{
		TTL:           cfg.Locks.TTL(),
		WaitTimeout:   cfg.Locks.WaitTimeout(),
		RetryInterval: cfg.Locks.RetryInterval(),
	}, metricsCollector)
	log.Info("Redis locker initialized (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Locks.TTL())

	// Интеграция с реестром пациентов
	patientClient := patientServiceClient.NewClient(
		cfg.PatientService.URL,
		time.Duration(cfg.PatientService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (PatientService=%s timeout=%ds)",
		cfg.PatientService.URL, cfg.PatientService.Timeout)

	// Репозитории
	appointments := appointmentRepo.NewRepository(wrappedDB)
	assignments := assignmentRepo.NewRepository(wrappedDB)
	centers := centerRepo.NewRepository(wrappedDB)
	sessions := sessionRepo.NewRepository(wrappedDB)
	notes := noteRepo.NewRepository(wrappedDB)
	inventory := inventoryRepo.NewRepository(wrappedDB)

	// Сервисы
	cycleTracker := cyclesService.NewTracker(patientClient, cfg.TreatmentCycle.Policy(), log)
	capacitySvc := capacityService.NewService(centers, appointments, log)
	machineSvc := assignmentsService.NewService(centers, assignments, txMgr, lock, metricsCollector, log)
	inventorySvc := inventoryService.NewService(inventory, sessions, centers, txMgr, lock, metricsCollector, log)
	appointmentSvc := appointmentsService.NewService(appointments, centers, machineSvc, cycleTracker, txMgr, lock, metricsCollector, log)
	sessionSvc := sessionsService.NewService(sessionsService.Deps{
		Sessions:     sessions,
		Appointments: appointments,
		Assets:       centers,
		Notes:        notes,
		Catalog:      inventory,
		Machines:     machineSvc,
		Inventory:    inventorySvc,
		Cycles:       cycleTracker,
		TxManager:    txMgr,
		Locker:       lock,
		Metrics:      metricsCollector,
		Logger:       log,
	})

	// Use cases
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(
		appointments,
		centers,
		patientClient,
		capacitySvc,
		txMgr,
		lock,
		metricsCollector,
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointments,
		centers,
		sessions,
		capacitySvc,
		machineSvc,
		txMgr,
		lock,
		metricsCollector,
		log,
	)

	// Роутер
	opts := api.Options{}
	if cfg.Metrics.Enabled {
		opts.Metrics = metricsCollector
		opts.MetricsPath = cfg.Metrics.Path
		opts.MetricsHandler = promhttp.Handler()
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	r := api.NewRouter(api.Handlers{
		Capacity:     capacityHandler.NewHandler(capacitySvc, log),
		Appointments: appointmentsHandler.NewHandler(bookAppointmentUseCase, rescheduleAppointmentUseCase, appointmentSvc, log),
		Assignments:  assignmentsHandler.NewHandler(machineSvc, log),
		Sessions:     sessionsHandler.NewHandler(sessionSvc, log),
		Inventory:    inventoryHandler.NewHandler(inventorySvc, log),
	}, opts)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
