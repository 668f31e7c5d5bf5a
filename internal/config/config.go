package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/m04kA/SMC-AppointmentService/internal/calendar"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	ErrReadConfig    = errors.New("config: failed to read config")
	ErrInvalidConfig = errors.New("config: invalid config")
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	QueueMemory = "memory"
	QueueRedis  = "redis"

	EmailProviderLog      = "log"
	EmailProviderSendGrid = "sendgrid"
	EmailProviderSES      = "ses"
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Storage        StorageConfig        `toml:"storage"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Booking        BookingConfig        `toml:"booking"`
	Schedule       ScheduleConfig       `toml:"schedule"`
	Notifications  NotificationsConfig  `toml:"notifications"`
	ProfileService ProfileServiceConfig `toml:"profile_service"`
}

// ServerConfig таймауты задаются в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL строка подключения для golang-migrate
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

type StorageConfig struct {
	Driver         string `toml:"driver"`
	MigrateOnStart bool   `toml:"migrate_on_start"`
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig политика движка бронирования
type BookingConfig struct {
	Timezone               string `toml:"timezone"`
	WeekStart              string `toml:"week_start"`
	DefaultStatus          string `toml:"default_status"`
	AdminAutoConfirm       bool   `toml:"admin_auto_confirm"`
	MinNoticeMinutes       int    `toml:"min_notice_minutes"`
	MaxAdvanceDays         int    `toml:"max_advance_days"`
	DefaultDurationMinutes int    `toml:"default_duration_minutes"`
}

// Location часовой пояс салона
func (c BookingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// WeekStartDay первый день недели для календарных видов
func (c BookingConfig) WeekStartDay() (time.Weekday, error) {
	if c.WeekStart == "" {
		return calendar.DefaultWeekStart, nil
	}
	return calendar.ParseWeekday(c.WeekStart)
}

// ScheduleConfig расписание по умолчанию, которым заполняется пустое хранилище
type ScheduleConfig struct {
	SlotMinutes int      `toml:"slot_minutes"`
	OpenTime    string   `toml:"open_time"`
	CloseTime   string   `toml:"close_time"`
	ClosedDays  []string `toml:"closed_days"`
}

// WeeklySchedule собирает недельное расписание из конфигурации
func (c ScheduleConfig) WeeklySchedule() (domain.WeeklySchedule, error) {
	open, err := types.NewTimeStringFromString(c.OpenTime)
	if err != nil {
		return domain.WeeklySchedule{}, fmt.Errorf("open_time: %w", err)
	}
	closeAt, err := types.NewTimeStringFromString(c.CloseTime)
	if err != nil {
		return domain.WeeklySchedule{}, fmt.Errorf("close_time: %w", err)
	}

	closed := make(map[time.Weekday]bool, len(c.ClosedDays))
	for _, name := range c.ClosedDays {
		day, err := calendar.ParseWeekday(name)
		if err != nil {
			return domain.WeeklySchedule{}, err
		}
		closed[day] = true
	}

	var w domain.WeeklySchedule
	w.SlotMinutes = c.SlotMinutes
	for d := time.Sunday; d <= time.Saturday; d++ {
		w.Days[d] = domain.DaySchedule{
			Weekday:   d,
			IsOpen:    !closed[d],
			OpenTime:  open,
			CloseTime: closeAt,
		}
	}
	return w, w.Validate()
}

type NotificationsConfig struct {
	Enabled         bool        `toml:"enabled"`
	Queue           string      `toml:"queue"`
	BufferSize      int         `toml:"buffer_size"`
	Workers         int         `toml:"workers"`
	DeliveryTimeout int         `toml:"delivery_timeout"`
	Email           EmailConfig `toml:"email"`
	Redis           RedisConfig `toml:"redis"`
	Kafka           KafkaConfig `toml:"kafka"`
}

type EmailConfig struct {
	Provider       string `toml:"provider"`
	FromEmail      string `toml:"from_email"`
	FromName       string `toml:"from_name"`
	SendGridAPIKey string `toml:"sendgrid_api_key"`
	SESRegion      string `toml:"ses_region"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

type KafkaConfig struct {
	Enabled bool     `toml:"enabled"`
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
}

type ProfileServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// Load читает .env (если есть), TOML-файл и переменные окружения
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: .env: %v", ErrReadConfig, err)
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.SSLMode, "disable")
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)

	setDefault(&c.Storage.Driver, StorageDriverPostgres)
	setDefault(&c.Logs.Level, "info")
	setDefault(&c.Metrics.Path, "/metrics")
	setDefault(&c.Metrics.ServiceName, "appointment_service")

	setDefault(&c.Booking.DefaultStatus, string(domain.DefaultStatus))
	setDefault(&c.Booking.DefaultDurationMinutes, domain.DefaultDurationMinutes)

	setDefault(&c.Schedule.SlotMinutes, calendar.DefaultGranularityMinutes)
	setDefault(&c.Schedule.OpenTime, string(calendar.DefaultOpenTime))
	setDefault(&c.Schedule.CloseTime, string(calendar.DefaultCloseTime))
	if c.Schedule.ClosedDays == nil {
		c.Schedule.ClosedDays = []string{"sunday"}
	}

	setDefault(&c.Notifications.Queue, QueueMemory)
	setDefault(&c.Notifications.BufferSize, 256)
	setDefault(&c.Notifications.Workers, 2)
	setDefault(&c.Notifications.DeliveryTimeout, 10)
	setDefault(&c.Notifications.Email.Provider, EmailProviderLog)
	setDefault(&c.Notifications.Redis.Key, "appointments:notifications")
	setDefault(&c.Notifications.Kafka.Topic, "appointments.events")

	setDefault(&c.ProfileService.Timeout, 5)
}

func (c *Config) applyEnv() {
	overrideString(&c.Database.Host, "DB_HOST")
	overrideString(&c.Database.Password, "DB_PASSWORD")
	overrideString(&c.Storage.Driver, "STORAGE_DRIVER")
	overrideString(&c.Notifications.Email.SendGridAPIKey, "SENDGRID_API_KEY")
	overrideString(&c.Notifications.Redis.Password, "REDIS_PASSWORD")
	overrideString(&c.ProfileService.URL, "PROFILE_SERVICE_URL")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Notifications.Kafka.Brokers = c.Notifications.Kafka.Brokers[:0]
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.Notifications.Kafka.Brokers = append(c.Notifications.Kafka.Brokers, b)
			}
		}
	}
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database host and dbname are required for postgres storage", ErrInvalidConfig)
		}
	case StorageDriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Booking.WeekStartDay(); err != nil {
		return fmt.Errorf("%w: booking.week_start: %v", ErrInvalidConfig, err)
	}
	if _, err := domain.ParseAppointmentStatus(c.Booking.DefaultStatus); err != nil ||
		c.Booking.DefaultStatus == string(domain.StatusCancelled) {
		return fmt.Errorf("%w: booking.default_status must be pending or confirmed", ErrInvalidConfig)
	}
	if c.Booking.MinNoticeMinutes < 0 || c.Booking.MinNoticeMinutes > domain.MaxBookingNoticeMinutes {
		return fmt.Errorf("%w: booking.min_notice_minutes out of range", ErrInvalidConfig)
	}
	if c.Booking.MaxAdvanceDays < 0 || c.Booking.MaxAdvanceDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: booking.max_advance_days out of range", ErrInvalidConfig)
	}
	if c.Booking.DefaultDurationMinutes < domain.MinDurationMinutes || c.Booking.DefaultDurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: booking.default_duration_minutes out of range", ErrInvalidConfig)
	}

	if c.Schedule.SlotMinutes < domain.MinSlotMinutes || c.Schedule.SlotMinutes > domain.MaxSlotMinutes {
		return fmt.Errorf("%w: schedule.slot_minutes out of range", ErrInvalidConfig)
	}
	if _, err := c.Schedule.WeeklySchedule(); err != nil {
		return fmt.Errorf("%w: schedule: %v", ErrInvalidConfig, err)
	}

	n := c.Notifications
	if n.Enabled {
		switch n.Queue {
		case QueueMemory:
		case QueueRedis:
			if n.Redis.Addr == "" {
				return fmt.Errorf("%w: notifications.redis.addr is required for redis queue", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown notifications.queue %q", ErrInvalidConfig, n.Queue)
		}
		if n.Workers <= 0 || n.BufferSize <= 0 {
			return fmt.Errorf("%w: notifications.workers and buffer_size must be positive", ErrInvalidConfig)
		}
		switch n.Email.Provider {
		case EmailProviderLog:
		case EmailProviderSendGrid:
			if n.Email.SendGridAPIKey == "" || n.Email.FromEmail == "" {
				return fmt.Errorf("%w: sendgrid requires api key and from_email", ErrInvalidConfig)
			}
		case EmailProviderSES:
			if n.Email.FromEmail == "" {
				return fmt.Errorf("%w: ses requires from_email", ErrInvalidConfig)
			}
		default:
			return fmt.Errorf("%w: unknown email provider %q", ErrInvalidConfig, n.Email.Provider)
		}
		if n.Kafka.Enabled && len(n.Kafka.Brokers) == 0 {
			return fmt.Errorf("%w: notifications.kafka.brokers is empty", ErrInvalidConfig)
		}
	}

	return nil
}

func setDefault[T comparable](field *T, value T) {
	var zero T
	if *field == zero {
		*field = value
	}
}

func overrideString(field *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*field = v
	}
}
