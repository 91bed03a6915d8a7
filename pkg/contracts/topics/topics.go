package topics

const (
	// Fixtures
	MatchUpdates = "match_updates"

	// DLQ para mensagens que não puderam ser processadas
	MatchUpdatesDLQ = "match_updates_dlq"
)
