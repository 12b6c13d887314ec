package data

// User - holds the required fields of a bot user
type User struct {
	ID      uint64
	TgID    int64
	TgUser  string
	TgFirst string
	TgLast  string

	PublicKey  string
	ContractID string

	LastMenuID int
}
