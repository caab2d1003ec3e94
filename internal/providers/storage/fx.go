package storage

import (
	"context"

	"github.com/smallbiznis/voltbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.storage",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Store, error) {
	if cfg.Report.Storage != config.ReportStorageS3 {
		return NewFileSystem(cfg.Report.Directory, log), nil
	}
	return NewS3(context.Background(), S3Config{
		Bucket:       cfg.Report.S3Bucket,
		Region:       cfg.Report.S3Region,
		Endpoint:     cfg.Report.S3Endpoint,
		Prefix:       cfg.Report.S3Prefix,
		AccessKey:    cfg.Report.S3Access,
		SecretKey:    cfg.Report.S3Secret,
		UsePathStyle: cfg.Report.S3PathLike,
	}, log)
}
