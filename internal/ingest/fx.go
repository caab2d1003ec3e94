package ingest

import (
	"github.com/smallbiznis/voltbill/internal/config"
	"github.com/smallbiznis/voltbill/internal/ingest/parser"
	"github.com/smallbiznis/voltbill/internal/ingest/repository"
	"github.com/smallbiznis/voltbill/internal/ingest/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ingest.service",
	fx.Provide(newParser),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

func newParser(cfg config.Config, dialect *config.CSVDialectHolder, log *zap.Logger) *parser.Parser {
	loc, err := parser.LoadLocation(cfg.Ingest.Timezone)
	if err != nil {
		log.Named("ingest.parser").Warn("unknown ingest timezone, using UTC",
			zap.String("timezone", cfg.Ingest.Timezone),
			zap.Error(err),
		)
	}
	return parser.New(dialect, loc)
}
