package models

// -----------------------------------------------------------------------------
// Server State Structure (websocket feed)
// -----------------------------------------------------------------------------

type MLatestQuotes struct {
	Type      string                `json:"type"` // "INITIAL" or "UPDATE"
	Quotes    map[string]MQuoteData `json:"quotes"`
	Timestamp int64                 `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	GameIDs []string `json:"gameIds"`
}
