package bill

import (
	"github.com/smallbiznis/voltbill/internal/bill/repository"
	"github.com/smallbiznis/voltbill/internal/bill/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bill.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
