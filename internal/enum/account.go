package enum

type AccountProvider string

const (
	ProviderGmail   AccountProvider = "GMAIL"
	ProviderOutlook AccountProvider = "OUTLOOK"
	ProviderImap    AccountProvider = "IMAP"
	ProviderYahoo   AccountProvider = "YAHOO"
	ProviderProton  AccountProvider = "PROTON"
)

func (t AccountProvider) String() string {
	return string(t)
}

// SupportsOAuth reports whether the provider goes through the simulated
// OAuth webview instead of the manual server form.
func (t AccountProvider) SupportsOAuth() bool {
	return t == ProviderGmail || t == ProviderOutlook
}

func (t AccountProvider) IsValid() bool {
	switch t {
	case ProviderGmail, ProviderOutlook, ProviderImap, ProviderYahoo, ProviderProton:
		return true
	}
	return false
}

type AuthProtocol string

const (
	ProtocolImap  AuthProtocol = "IMAP"
	ProtocolPop3  AuthProtocol = "POP3"
	ProtocolOAuth AuthProtocol = "OAUTH"
)

func (t AuthProtocol) String() string {
	return string(t)
}

type ConnectionStatus string

const (
	StatusConnected ConnectionStatus = "CONNECTED"
	StatusSyncing   ConnectionStatus = "SYNCING"
	StatusError     ConnectionStatus = "ERROR"
)

func (t ConnectionStatus) String() string {
	return string(t)
}

func (t ConnectionStatus) IsValid() bool {
	switch t {
	case StatusConnected, StatusSyncing, StatusError:
		return true
	}
	return false
}

type TransportSecurity string

const (
	SecurityNone     TransportSecurity = "none"
	SecuritySSL      TransportSecurity = "ssl"
	SecurityStartTLS TransportSecurity = "startTLS"
)

func (t TransportSecurity) String() string {
	return string(t)
}
