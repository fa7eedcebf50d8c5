// Конфигурация richdoc из переменных окружения.
//
// Основные возможности:
//   - Загрузка полей Config по тегам env.
//   - Маскировка DSN и секретов в логах.
//   - Значения по умолчанию и ограничение диапазонов (глубина истории, TTL сессий, таймаут макросов).
package config

import (
	"log/slog"
	"reflect"
	"strings"
	"time"
)

const (
	DefaultDatabaseDSN      = "file:richdoc.db"
	DefaultListen           = ":8080"
	DefaultMetricsListen    = ":2112"
	DefaultHistoryDepth     = 100
	MaxHistoryDepth         = 1000
	DefaultSessionTTL       = 30
	DefaultAutosaveSchedule = "@every 1m"
	DefaultMacroTimeout     = 5
)

type Config struct {
	DatabaseDSN string `env:"RICHDOC_DATABASE_DSN"`

	Listen        string `env:"RICHDOC_LISTEN"`
	MetricsListen string `env:"RICHDOC_METRICS_LISTEN"`

	HistoryDepth     int    `env:"RICHDOC_HISTORY_DEPTH"`
	SessionTTLMin    int    `env:"RICHDOC_SESSION_TTL_MIN"`
	AutosaveSchedule string `env:"RICHDOC_AUTOSAVE_SCHEDULE"`

	MacroTimeoutSec int `env:"RICHDOC_MACRO_TIMEOUT_SEC"`

	PDFFontPath    string `env:"RICHDOC_PDF_FONT"`
	PDFFetchImages bool   `env:"RICHDOC_PDF_FETCH_IMAGES"`

	Debug bool `env:"RICHDOC_DEBUG"`
}

// ReadConfig читает переменные окружения и подставляет значения по умолчанию
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	if config.DatabaseDSN == "" {
		config.DatabaseDSN = DefaultDatabaseDSN
	}
	if config.Listen == "" {
		config.Listen = DefaultListen
	}
	if config.MetricsListen == "" {
		config.MetricsListen = DefaultMetricsListen
	}
	if config.AutosaveSchedule == "" {
		config.AutosaveSchedule = DefaultAutosaveSchedule
	}

	if config.HistoryDepth <= 0 {
		config.HistoryDepth = DefaultHistoryDepth
	}
	config.HistoryDepth = min(config.HistoryDepth, MaxHistoryDepth)

	if config.SessionTTLMin <= 0 {
		config.SessionTTLMin = DefaultSessionTTL
	}

	if config.MacroTimeoutSec <= 0 || config.MacroTimeoutSec > 60 {
		config.MacroTimeoutSec = DefaultMacroTimeout
	}

	return config
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMin) * time.Minute
}

func (c *Config) MacroTimeout() time.Duration {
	return time.Duration(c.MacroTimeoutSec) * time.Second
}

// IsPostgres сообщает, что DSN указывает на PostgreSQL, а не на файл SQLite
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseDSN, "postgres://") || strings.HasPrefix(c.DatabaseDSN, "postgresql://")
}

// Присваивает полям структуры значения переменных, имя переменной лежит в теге поля.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)

		if fEnvTag == "" || !Exist(fEnvTag) {
			continue
		}

		raw := GetEnv(fEnvTag)
		if raw == "" {
			continue
		}

		logValue := raw
		if isSecret(fName) {
			logValue = mask(raw)
		}
		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", logValue),
			slog.String("source", "ENVIRONMENT"),
		)

		switch v.Field(i).Interface().(type) {
		case string:
			v.Field(i).SetString(raw)
		case int:
			v.Field(i).SetInt(int64(GetIntEnv(fEnvTag)))
		case bool:
			v.Field(i).SetBool(GetBoolEnv(fEnvTag))
		}
	}
}

func isSecret(field string) bool {
	name := strings.ToLower(field)
	for _, s := range []string{"pass", "secret", "token", "dsn"} {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// mask оставляет первый и последний символ
func mask(val string) string {
	runes := []rune(val)
	if len(runes) <= 2 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}
