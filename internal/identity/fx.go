package identity

import (
	"github.com/smallbiznis/credicheck/internal/identity/repository"
	"github.com/smallbiznis/credicheck/internal/identity/service"
	"go.uber.org/fx"
)

var Module = fx.Module("identity",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
