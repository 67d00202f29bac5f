package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración del motor de automatización (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App        AppConfig
	DB         DBConfig
	JWT        JWTConfig
	HTTP       HTTPConfig
	Redis      RedisConfig
	Automation AutomationConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT para los endpoints de disparo manual.
type JWTConfig struct {
	Secret string
	Issuer string
}

// HTTPConfig configuración del servidor HTTP de operación.
type HTTPConfig struct {
	Enabled bool
	Host    string
	Port    int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig conexión a Redis, usada por el lock distribuido de alertas.
type RedisConfig struct {
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
}

// AutomationConfig cadencias y umbrales de las tareas periódicas.
type AutomationConfig struct {
	StatusInterval       time.Duration
	ExpiryInterval       time.Duration
	FullSweepInterval    time.Duration
	AlertCleanupInterval time.Duration
	VelocityInterval     time.Duration
	DailySummaryInterval time.Duration

	// TaskTimeout es el plazo máximo de cada ejecución de tarea.
	TaskTimeout time.Duration

	ExpiryHorizonDays  int
	AlertMaxAgeDays    int
	VelocityWindowDays int
	VelocityCoverDays  int
	VelocityTolerance  float64

	// LockerBackend: "memory" (un solo proceso) o "redis" (varias instancias).
	LockerBackend string
	LockTTL       time.Duration
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, AUTOMATION_STATUS_INTERVAL, etc.
func Load() (*Config, error) {
	// .env opcional; si no existe no es un error
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "stock-automation"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "inventory_pro"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", "stock-automation"),
		},
		HTTP: HTTPConfig{
			Enabled: v.GetBool("HTTP_ENABLED"),
			Host:    getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:    getInt(v, "HTTP_PORT", 8081),
		},
		Redis: RedisConfig{
			URL:      getString(v, "REDIS_URL", ""),
			Host:     getString(v, "REDIS_HOST", "127.0.0.1"),
			Port:     getString(v, "REDIS_PORT", "6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Automation: AutomationConfig{
			StatusInterval:       v.GetDuration("AUTOMATION_STATUS_INTERVAL"),
			ExpiryInterval:       v.GetDuration("AUTOMATION_EXPIRY_INTERVAL"),
			FullSweepInterval:    v.GetDuration("AUTOMATION_FULL_SWEEP_INTERVAL"),
			AlertCleanupInterval: v.GetDuration("AUTOMATION_ALERT_CLEANUP_INTERVAL"),
			VelocityInterval:     v.GetDuration("AUTOMATION_VELOCITY_INTERVAL"),
			DailySummaryInterval: v.GetDuration("AUTOMATION_DAILY_SUMMARY_INTERVAL"),
			TaskTimeout:          v.GetDuration("AUTOMATION_TASK_TIMEOUT"),
			ExpiryHorizonDays:    getInt(v, "AUTOMATION_EXPIRY_HORIZON_DAYS", 30),
			AlertMaxAgeDays:      getInt(v, "AUTOMATION_ALERT_MAX_AGE_DAYS", 30),
			VelocityWindowDays:   getInt(v, "AUTOMATION_VELOCITY_WINDOW_DAYS", 30),
			VelocityCoverDays:    getInt(v, "AUTOMATION_VELOCITY_COVER_DAYS", 7),
			VelocityTolerance:    v.GetFloat64("AUTOMATION_VELOCITY_TOLERANCE"),
			LockerBackend:        getString(v, "LOCKER_BACKEND", "memory"),
			LockTTL:              v.GetDuration("LOCKER_TTL"),
		},
	}

	if err := cfg.Automation.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_ENABLED", true)
	v.SetDefault("AUTOMATION_STATUS_INTERVAL", 5*time.Minute)
	v.SetDefault("AUTOMATION_EXPIRY_INTERVAL", time.Hour)
	v.SetDefault("AUTOMATION_FULL_SWEEP_INTERVAL", 30*time.Minute)
	v.SetDefault("AUTOMATION_ALERT_CLEANUP_INTERVAL", 24*time.Hour)
	v.SetDefault("AUTOMATION_VELOCITY_INTERVAL", 7*24*time.Hour)
	v.SetDefault("AUTOMATION_DAILY_SUMMARY_INTERVAL", 24*time.Hour)
	v.SetDefault("AUTOMATION_TASK_TIMEOUT", 2*time.Minute)
	v.SetDefault("AUTOMATION_VELOCITY_TOLERANCE", 0.2)
	v.SetDefault("LOCKER_TTL", 10*time.Second)
}

func (c AutomationConfig) validate() error {
	intervals := map[string]time.Duration{
		"AUTOMATION_STATUS_INTERVAL":        c.StatusInterval,
		"AUTOMATION_EXPIRY_INTERVAL":        c.ExpiryInterval,
		"AUTOMATION_FULL_SWEEP_INTERVAL":    c.FullSweepInterval,
		"AUTOMATION_ALERT_CLEANUP_INTERVAL": c.AlertCleanupInterval,
		"AUTOMATION_VELOCITY_INTERVAL":      c.VelocityInterval,
		"AUTOMATION_DAILY_SUMMARY_INTERVAL": c.DailySummaryInterval,
		"AUTOMATION_TASK_TIMEOUT":           c.TaskTimeout,
	}
	for key, d := range intervals {
		if d <= 0 {
			return fmt.Errorf("config: %s debe ser mayor que cero", key)
		}
	}
	if c.VelocityWindowDays <= 0 || c.VelocityCoverDays <= 0 {
		return fmt.Errorf("config: ventana y cobertura de velocidad deben ser positivas")
	}
	if c.ExpiryHorizonDays < 0 {
		return fmt.Errorf("config: AUTOMATION_EXPIRY_HORIZON_DAYS no puede ser negativo")
	}
	if c.AlertMaxAgeDays < 0 {
		return fmt.Errorf("config: AUTOMATION_ALERT_MAX_AGE_DAYS no puede ser negativo")
	}
	switch c.LockerBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: LOCKER_BACKEND desconocido %q", c.LockerBackend)
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
