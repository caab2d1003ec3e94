package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CSVDialect describes the layout of a meter export.
type CSVDialect struct {
	Delimiter         string   `mapstructure:"delimiter"`
	TimestampColumn   string   `mapstructure:"timestampColumn"`
	ConsumptionColumn string   `mapstructure:"consumptionColumn"`
	PriceColumn       string   `mapstructure:"priceColumn"`
	TimestampLayouts  []string `mapstructure:"timestampLayouts"`
}

func DefaultCSVDialect() CSVDialect {
	return CSVDialect{
		Delimiter:         ";",
		TimestampColumn:   "Časovna Značka (CEST/CET)",
		ConsumptionColumn: "Poraba [kWh]",
		PriceColumn:       "Dinamične Cene [EUR/kWh]",
		TimestampLayouts: []string{
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02T15:04",
			"2006-01-02 15:04",
			"02.01.2006 15:04:05",
			"02.01.2006 15:04",
		},
	}
}

// Comma returns the delimiter as a rune.
func (d CSVDialect) Comma() rune {
	r, _ := utf8.DecodeRuneInString(d.Delimiter)
	return r
}

// withDefaults fills the timestamp layouts when a config file omits them.
func (d CSVDialect) withDefaults() CSVDialect {
	if len(d.TimestampLayouts) == 0 {
		d.TimestampLayouts = DefaultCSVDialect().TimestampLayouts
	}
	return d
}

type CSVDialectHolder struct {
	current atomic.Value // holds CSVDialect
}

// NewStaticCSVDialectHolder wraps a fixed dialect.
func NewStaticCSVDialectHolder(d CSVDialect) *CSVDialectHolder {
	holder := &CSVDialectHolder{}
	holder.current.Store(d)
	return holder
}

// NewCSVDialectHolder reads ingest.yml when present and watches it for changes.
func NewCSVDialectHolder(log *zap.Logger) (*CSVDialectHolder, error) {
	log = log.Named("config.ingest")
	v := viper.New()

	v.SetConfigName("ingest")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/voltbill")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VOLTBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCSVDialect()
	v.SetDefault("csv.delimiter", defaults.Delimiter)
	v.SetDefault("csv.timestampColumn", defaults.TimestampColumn)
	v.SetDefault("csv.consumptionColumn", defaults.ConsumptionColumn)
	v.SetDefault("csv.priceColumn", defaults.PriceColumn)
	v.SetDefault("csv.timestampLayouts", defaults.TimestampLayouts)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	var dialect CSVDialect
	if err := v.UnmarshalKey("csv", &dialect); err != nil {
		return nil, err
	}
	dialect = dialect.withDefaults()
	if err := validateCSVDialect(dialect); err != nil {
		return nil, err
	}

	holder := NewStaticCSVDialectHolder(dialect)
	if !fileFound {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CSVDialect
		if err := v.UnmarshalKey("csv", &updated); err != nil {
			log.Warn("ingest config reload failed", zap.Error(err))
			return
		}
		updated = updated.withDefaults()
		if err := validateCSVDialect(updated); err != nil {
			log.Warn("invalid ingest config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("ingest config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *CSVDialectHolder) Get() CSVDialect {
	return h.current.Load().(CSVDialect)
}

func validateCSVDialect(d CSVDialect) error {
	if utf8.RuneCountInString(d.Delimiter) != 1 {
		return errors.New("csv.delimiter must be a single character")
	}
	if strings.TrimSpace(d.TimestampColumn) == "" ||
		strings.TrimSpace(d.ConsumptionColumn) == "" ||
		strings.TrimSpace(d.PriceColumn) == "" {
		return errors.New("csv column names cannot be empty")
	}
	return nil
}
