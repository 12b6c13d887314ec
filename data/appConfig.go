package data

// AppConfig holds the application configuration read from config.json
// and the environment
type AppConfig struct {
	RpcURL            string `json:"rpcUrl"`
	NetworkPassphrase string `json:"networkPassphrase"`
	SecretKey         string `json:"secretKey"`

	ListenAddress   string   `json:"listenAddress"`
	RequestTimeout  string   `json:"requestTimeout"`
	ShutdownTimeout string   `json:"shutdownTimeout"`
	CorsOrigins     []string `json:"corsOrigins"`

	BotToken     string `json:"botToken"`
	BotOwner     int64  `json:"botOwner"`
	DatabasePath string `json:"databasePath"`
}
