package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.LoggingMiddleware, s.RecoverMiddleware))

	// Preflight for every API route
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.NoContentHandler(), s.CorsMiddleware))

	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.LoadSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPISession, ChainMiddleware(s.ResetSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteAPIPreferences, ChainMiddleware(s.PreferencesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPIBadge, ChainMiddleware(s.RemoveBadgeHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteAPIIdentify, ChainMiddleware(s.IdentifyHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIInvoice, ChainMiddleware(s.SelectInvoiceHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIVerify, ChainMiddleware(s.VerifyHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteAPIChat, ChainMiddleware(s.ChatHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIFeedback, ChainMiddleware(s.FeedbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIEscalate, ChainMiddleware(s.EscalateHandler(), s.APIMiddleware()...))
}
