package dto

// SyncOutcome summarizes one account's fetch-and-merge result.
type SyncOutcome struct {
	AccountID string `json:"accountId"`
	Fetched   int    `json:"fetched"`
	Merged    int    `json:"merged"`
}

// SyncReport summarizes one sync-all pass across every linked account.
type SyncReport struct {
	Accounts int               `json:"accounts"`
	Fetched  int               `json:"fetched"`
	Merged   int               `json:"merged"`
	Errors   map[string]string `json:"errors,omitempty"`
}
