package audit

import "net/http"

// MetaFromRequest builds RequestMeta from what the HTTP boundary already
// knows. RemoteAddr reflects chi's RealIP middleware when installed.
func MetaFromRequest(r *http.Request, sessionID string) RequestMeta {
	return RequestMeta{
		IPAddress: r.RemoteAddr,
		UserAgent: r.UserAgent(),
		SessionID: sessionID,
	}
}
