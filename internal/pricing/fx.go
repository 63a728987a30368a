package pricing

import (
	"github.com/smallbiznis/credicheck/internal/pricing/repository"
	"github.com/smallbiznis/credicheck/internal/pricing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
