package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod = "method"
	AttrPath   = "path"
	AttrStatus = "status"
	AttrStream = "stream"
)

// Stream names used as the AttrStream value.
const (
	StreamFeed   = "feed"
	StreamChat   = "chat"
	StreamMarket = "market"
	StreamLogin  = "login"
)
