package kickbase

import "time"

const (
	defaultBaseURL     = "https://api.kickbase.com"
	defaultHTTPTimeout = 10 * time.Second
	defaultChatPage    = 100
	authCookie         = "kkstrauth"
	sourceName         = "kickbase"
)
