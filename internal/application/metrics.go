package application

import "expvar"

// Process-wide counters published under /api/debug/vars.
var (
	registrationsTotal   = expvar.NewInt("registrations")
	loginsTotal          = expvar.NewInt("logins")
	accountsDeletedTotal = expvar.NewInt("accounts_deleted")
	mailFailuresTotal    = expvar.NewInt("mail_failures")
)
