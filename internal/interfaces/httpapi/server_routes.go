package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicMarketRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues/{leagueID}/drivers", handler.ListDrivers)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/transactions", handler.ListTransactions)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedTradeRoutes(mux, handler, verifier)
	registerAuthorizedTeamRoutes(mux, handler, verifier)
}

func registerAuthorizedTradeRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/market/drivers/{driverID}/buy", RequireAuth(verifier, http.HandlerFunc(handler.BuyFromMarket)))
	mux.Handle("POST /v1/leagues/{leagueID}/market/drivers/{driverID}/sell", RequireAuth(verifier, http.HandlerFunc(handler.SellToMarket)))
	mux.Handle("POST /v1/leagues/{leagueID}/market/drivers/{driverID}/list", RequireAuth(verifier, http.HandlerFunc(handler.ListDriverForSale)))
	mux.Handle("POST /v1/leagues/{leagueID}/market/drivers/{driverID}/unlist", RequireAuth(verifier, http.HandlerFunc(handler.UnlistDriver)))
	mux.Handle("POST /v1/leagues/{leagueID}/market/drivers/{driverID}/buy-from-user", RequireAuth(verifier, http.HandlerFunc(handler.BuyFromUser)))
	mux.Handle("POST /v1/leagues/{leagueID}/market/drivers/{driverID}/buyout", RequireAuth(verifier, http.HandlerFunc(handler.ExecuteBuyout)))
}

func registerAuthorizedTeamRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues/{leagueID}/teams/initialize", RequireAuth(verifier, http.HandlerFunc(handler.InitializeTeam)))
	mux.Handle("POST /v1/leagues/{leagueID}/teams/reserve-swap", RequireAuth(verifier, http.HandlerFunc(handler.SwapReserve)))
	mux.Handle("GET /v1/leagues/{leagueID}/teams/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyTeam)))
	mux.Handle("GET /v1/leagues/{leagueID}/drivers/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyDrivers)))
	mux.Handle("GET /v1/leagues/{leagueID}/transactions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyTransactions)))
}

func registerOperatorRoutes(mux *http.ServeMux, handler *Handler, opsToken string) {
	mux.Handle("POST /v1/leagues/{leagueID}/initialize-ownership", RequireOpsToken(opsToken, http.HandlerFunc(handler.InitializeLeagueOwnership)))
}
