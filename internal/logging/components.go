package logging

// Component constants for structured logging
// These replace hardcoded bracketed prefixes like [STARTUP], [PROXY], etc.
const (
	ComponentStartup      = "startup"
	ComponentShutdown     = "shutdown"
	ComponentDatabase     = "database"
	ComponentBootstrap    = "bootstrap"
	ComponentProxy        = "proxy"
	ComponentTester       = "tester"
	ComponentPoller       = "poller"
	ComponentHealthPoller = "health-poller"
	ComponentReports      = "reports"
	ComponentActions      = "actions"
	ComponentMetadata     = "metadata"
	ComponentSettings     = "settings"
	ComponentInstances    = "instances"
)
