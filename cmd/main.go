package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cancelAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	confirmAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_appointment"
	createAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/create_appointment"
	deleteAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_appointment"
	deleteSpecialDateHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/delete_special_date"
	getAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	getAvailableSlotsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_available_slots"
	getBusinessHoursHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_business_hours"
	listAppointmentsHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	rescheduleAppointmentHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateBusinessHoursHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/update_business_hours"
	upsertSpecialDateHandler "github.com/m04kA/SMC-AppointmentService/internal/api/handlers/upsert_special_date"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/config"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	scheduleRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/email"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/eventbus"
	profileServiceClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/profileservice"
	"github.com/m04kA/SMC-AppointmentService/internal/notification"
	appointmentsService "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	scheduleService "github.com/m04kA/SMC-AppointmentService/internal/service/schedule"
	"github.com/m04kA/SMC-AppointmentService/internal/usecase/availability"
	bookAppointmentUC "github.com/m04kA/SMC-AppointmentService/internal/usecase/book_appointment"
	"github.com/m04kA/SMC-AppointmentService/migrations"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

// appointmentStore хранилище записей, общее для движка и сервиса чтения
type appointmentStore interface {
	availability.AppointmentStore
	appointmentsService.AppointmentRepository
}

type storage struct {
	appointments appointmentStore
	schedule     scheduleService.Repository
	txManager    availability.TransactionManager
	close        func()
}

// notifications собранный конвейер уведомлений
type notifications struct {
	dispatcher *notification.Dispatcher
	closers    []func() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
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

	log.Info("Starting SMC-AppointmentService...")
	log.Info("Configuration loaded from config.toml")

	location, err := cfg.Booking.Location()
	if err != nil {
		log.Fatal("Invalid booking timezone %q: %v", cfg.Booking.Timezone, err)
	}
	weekStart, err := cfg.Booking.WeekStartDay()
	if err != nil {
		log.Fatal("Invalid week start %q: %v", cfg.Booking.WeekStart, err)
	}
	defaultWeekly, err := cfg.Schedule.WeeklySchedule()
	if err != nil {
		log.Fatal("Invalid default schedule: %v", err)
	}
	defaultStatus, err := domain.ParseAppointmentStatus(cfg.Booking.DefaultStatus)
	if err != nil {
		log.Fatal("Invalid default status %q: %v", cfg.Booking.DefaultStatus, err)
	}

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open storage: %v", err)
	}
	defer store.close()

	// Расписание: заполняем пустое хранилище расписанием из конфигурации
	scheduleSvc := scheduleService.NewService(store.schedule, defaultWeekly, log)
	if err := scheduleSvc.EnsureWeekly(context.Background()); err != nil {
		log.Fatal("Failed to initialize weekly schedule: %v", err)
	}

	// Уведомления
	var notifier availability.Notifier
	var pipeline *notifications
	if cfg.Notifications.Enabled {
		pipeline, err = buildNotifications(cfg, metricsCollector, log)
		if err != nil {
			log.Fatal("Failed to initialize notifications: %v", err)
		}
		notifier = pipeline.dispatcher
	} else {
		log.Info("Notifications disabled")
	}

	// Движок бронирования
	engineOpts := []availability.Option{}
	if cfg.Metrics.Enabled {
		engineOpts = append(engineOpts, availability.WithMetrics(metricsCollector))
	}
	engine := availability.NewEngine(
		store.appointments,
		store.txManager,
		scheduleSvc,
		notifier,
		availability.Policy{
			Location:         location,
			DefaultStatus:    defaultStatus,
			AdminAutoConfirm: cfg.Booking.AdminAutoConfirm,
			MinNoticeMinutes: cfg.Booking.MinNoticeMinutes,
			MaxAdvanceDays:   cfg.Booking.MaxAdvanceDays,
		},
		log,
		engineOpts...,
	)

	// Инициализируем use cases и сервисы
	bookAppointmentUseCase := bookAppointmentUC.NewUseCase(engine, log)
	appointmentsSvc := appointmentsService.NewService(store.appointments, weekStart, log)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(bookAppointmentUseCase, cfg.Booking.DefaultDurationMinutes, log)
	createAppointment := createAppointmentHandler.NewHandler(bookAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentsSvc, log)
	listAppointments := listAppointmentsHandler.NewHandler(appointmentsSvc, location, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(engine, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(engine, log)
	confirmAppointment := confirmAppointmentHandler.NewHandler(engine, log)
	deleteAppointment := deleteAppointmentHandler.NewHandler(engine, log)
	getBusinessHours := getBusinessHoursHandler.NewHandler(scheduleSvc, location, log)
	updateBusinessHours := updateBusinessHoursHandler.NewHandler(scheduleSvc, log)
	upsertSpecialDate := upsertSpecialDateHandler.NewHandler(scheduleSvc, log)
	deleteSpecialDate := deleteSpecialDateHandler.NewHandler(scheduleSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Свободные слоты на дату
	api.HandleFunc("/available-slots", getAvailableSlots.Handle).Methods(http.MethodGet)

	// Часы работы салона
	api.HandleFunc("/business-hours", getBusinessHours.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Записи ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", listAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)

	// --- Администрирование ---
	protected.HandleFunc("/appointments/{appointmentId}/confirm", confirmAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}", deleteAppointment.Handle).Methods(http.MethodDelete)
	protected.HandleFunc("/business-hours", updateBusinessHours.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/business-hours/special-dates/{date}", upsertSpecialDate.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/business-hours/special-dates/{date}", deleteSpecialDate.Handle).Methods(http.MethodDelete)

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	// Дожидаемся доставки уведомлений, поставленных в очередь до остановки
	if pipeline != nil {
		if err := pipeline.dispatcher.Close(shutdownCtx); err != nil {
			log.Warn("Notification dispatcher stopped with pending events: %v", err)
		}
		for _, closeFn := range pipeline.closers {
			if err := closeFn(); err != nil {
				log.Warn("Failed to close notification resource: %v", err)
			}
		}
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}

// openStorage открывает PostgreSQL (с миграциями) или хранилище в памяти
func openStorage(cfg *config.Config, m *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		log.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			appointments: appointmentRepo.NewMemoryRepository(),
			schedule:     scheduleRepo.NewMemoryRepository(),
			txManager:    txmanager.Noop{},
			close:        func() {},
		}, nil
	}

	if cfg.Storage.MigrateOnStart {
		version, err := migrations.Up(cfg.Database.URL())
		if err != nil {
			return nil, err
		}
		log.Info("Database migrations applied (version=%d)", version)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrappedDB *dbmetrics.DB
	if m != nil {
		wrappedDB = dbmetrics.WrapWithDefault(db, m, cfg.Metrics.ServiceName, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}

	return &storage{
		appointments: appointmentRepo.NewRepository(wrappedDB),
		schedule:     scheduleRepo.NewRepository(wrappedDB),
		txManager:    txmanager.NewTransactionManager(wrappedDB),
		close:        func() { _ = db.Close() },
	}, nil
}

// buildNotifications собирает очередь, каналы доставки и диспетчер
func buildNotifications(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) (*notifications, error) {
	nc := cfg.Notifications
	result := &notifications{}

	// Очередь
	var queue notification.Queue
	switch nc.Queue {
	case config.QueueRedis:
		client := redis.NewClient(&redis.Options{
			Addr:                  nc.Redis.Addr,
			Password:              nc.Redis.Password,
			DB:                    nc.Redis.DB,
			ContextTimeoutEnabled: true,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", nc.Redis.Addr, err)
		}
		queue = notification.NewRedisQueue(client, nc.Redis.Key, nc.BufferSize)
		result.closers = append(result.closers, client.Close)
		log.Info("Notification queue: redis (addr=%s, key=%s)", nc.Redis.Addr, nc.Redis.Key)
	default:
		queue = notification.NewMemoryQueue(nc.BufferSize)
		log.Info("Notification queue: memory (size=%d)", nc.BufferSize)
	}

	// Email
	from := email.From{Email: nc.Email.FromEmail, Name: nc.Email.FromName}
	var sender email.Sender
	switch nc.Email.Provider {
	case config.EmailProviderSendGrid:
		sg := email.NewSendGridSender(email.SendGridConfig{APIKey: nc.Email.SendGridAPIKey, From: from}, log)
		if sg == nil {
			return nil, errors.New("sendgrid provider selected but sendgrid_api_key is empty")
		}
		sender = sg
	case config.EmailProviderSES:
		client, err := email.NewSESClient(context.Background(), nc.Email.SESRegion)
		if err != nil {
			return nil, err
		}
		sender = email.NewSESSender(client, from, log)
	default:
		sender = email.NewLogSender(log)
	}
	log.Info("Email provider: %s", nc.Email.Provider)

	profiles := profileServiceClient.NewClient(
		cfg.ProfileService.URL,
		time.Duration(cfg.ProfileService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (ProfileService=%s timeout=%ds)",
		cfg.ProfileService.URL, cfg.ProfileService.Timeout)

	channels := []notification.Channel{
		notification.NewEmailChannel(profiles, sender, nc.Email.FromName, log),
	}

	// Kafka
	if nc.Kafka.Enabled {
		publisher := eventbus.NewPublisher(eventbus.Config{Brokers: nc.Kafka.Brokers, Topic: nc.Kafka.Topic})
		if publisher == nil {
			return nil, errors.New("kafka enabled but brokers or topic are empty")
		}
		channels = append(channels, notification.NewEventBusChannel(publisher))
		result.closers = append(result.closers, publisher.Close)
		log.Info("Event bus enabled (topic=%s)", publisher.Topic())
	}

	var dispatcherMetrics notification.Metrics
	if m != nil {
		dispatcherMetrics = m
	}

	result.dispatcher = notification.NewDispatcher(queue, channels, notification.Config{
		Workers:         nc.Workers,
		DeliveryTimeout: time.Duration(nc.DeliveryTimeout) * time.Second,
		InboxSize:       nc.BufferSize,
	}, dispatcherMetrics, log)
	log.Info("Notification dispatcher started (workers=%d)", nc.Workers)

	return result, nil
}
