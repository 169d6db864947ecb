package server

// Route path constants
const (
	// Session lifecycle
	RouteAPISession     = "/api/session"
	RouteAPIPreferences = "/api/preferences"
	RouteAPIBadge       = "/api/badge/{kind}"

	// Identification
	RouteAPIIdentify = "/api/identify"
	RouteAPIInvoice  = "/api/invoice"
	RouteAPIVerify   = "/api/verify"

	// Chat
	RouteAPIChat     = "/api/chat"
	RouteAPIFeedback = "/api/feedback"
	RouteAPIEscalate = "/api/escalate"

	RouteHealth = "/health"
)
