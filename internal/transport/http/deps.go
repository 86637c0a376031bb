package http

import (
	"github.com/go-api-registration/internal/application/registration"
	appmiddleware "github.com/go-api-registration/internal/transport/http/middleware"
	"go.uber.org/zap"
)

// Deps holds everything the router needs that is built outside of it.
type Deps struct {
	Registration registration.Service
	// Limiter guards the public write endpoints. Nil disables rate limiting.
	Limiter appmiddleware.Limiter
	Logger  *zap.Logger
}
