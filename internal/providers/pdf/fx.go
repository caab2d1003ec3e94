package pdf

import (
	"context"

	"github.com/smallbiznis/voltbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) Provider {
	if cfg.Report.Engine != config.ReportEngineChromedp {
		return NewMaroto()
	}

	p := NewChromedp(ChromedpConfig{
		RemoteURL: cfg.Report.ChromeRemoteURL,
		Timeout:   cfg.Report.ChromeTimeout,
		NoSandbox: cfg.Report.ChromeNoSandbox,
	}, log)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			p.Close()
			return nil
		},
	})
	return p
}
