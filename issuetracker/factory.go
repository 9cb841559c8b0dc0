package issuetracker

// ClientFactory builds a tracker client from stored integration credentials.
type ClientFactory interface {
	NewClient(provider ProviderType, credentials map[string]string) (Client, error)
}
