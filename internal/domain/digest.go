package domain

// DigestSubscription — чат, которому пора отправить дайджест, и валюта цен в нём
type DigestSubscription struct {
	ChatID   int64
	Currency string
}
