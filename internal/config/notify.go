package config

// NotifyConfig holds the optional relays. Each is enabled by its first field.
type NotifyConfig struct {
	NATSURL             string
	NATSSubjectPrefix   string
	DiscordWebhookID    string
	DiscordWebhookToken string
	TelegramToken       string
	TelegramChatID      int64
}

func loadNotify() NotifyConfig {
	return NotifyConfig{
		NATSURL:             envOrDefault(envNATSURL, ""),
		NATSSubjectPrefix:   envOrDefault(envNATSPrefix, defaultNATSPrefix),
		DiscordWebhookID:    envOrDefault(envDiscordID, ""),
		DiscordWebhookToken: envOrDefault(envDiscordToken, ""),
		TelegramToken:       envOrDefault(envTelegramToken, ""),
		TelegramChatID:      int64EnvOrDefault(envTelegramChatID, 0),
	}
}
