package router

import "net/http"

type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux, mw func(http.Handler) http.Handler)
}

func New(
	bankController RouteRegistrar,
	clientController RouteRegistrar,
	rateController RouteRegistrar,
	healthController RouteRegistrar,
	mw func(http.Handler) http.Handler,
) *http.ServeMux {
	mux := http.NewServeMux()
	registerSwaggerRoutes(mux)

	for _, registrar := range []RouteRegistrar{bankController, clientController, rateController, healthController} {
		if registrar != nil {
			registrar.RegisterRoutes(mux, mw)
		}
	}

	return mux
}
