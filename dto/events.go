package dto

import "time"

type AccountLinked struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	Provider     string `json:"provider"`
}

type MailboxSynced struct {
	Accounts  int       `json:"accounts"`
	Fetched   int       `json:"fetched"`
	Merged    int       `json:"merged"`
	StartedAt time.Time `json:"startedAt"`
}
