package report

import (
	"github.com/smallbiznis/credicheck/internal/report/repository"
	"github.com/smallbiznis/credicheck/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
