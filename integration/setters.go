package integration

// SetName returns a setter that renames the integration.
func SetName(name string) IntegrationSetter {
	return func(i *Integration) error {
		if name == "" {
			return ErrInvalidName
		}
		i.Name = name
		return nil
	}
}

// SetIsActive returns a setter that toggles whether the integration may
// file issues. Inactive integrations are kept for their issue links.
func SetIsActive(isActive bool) IntegrationSetter {
	return func(i *Integration) error {
		i.IsActive = isActive
		return nil
	}
}

// SetEncryptedCredentials returns a setter that rotates the stored
// credentials. The ciphertext must already be sealed by EncryptCredentials.
func SetEncryptedCredentials(ciphertext []byte) IntegrationSetter {
	return func(i *Integration) error {
		if len(ciphertext) == 0 {
			return ErrInvalidCredentials
		}
		i.EncryptedCredentials = ciphertext
		return nil
	}
}

// SetStatus returns a setter that records the tracker-side state of a
// filed issue.
func SetStatus(status string) IssueLinkSetter {
	return func(il *IssueLink) error {
		il.Status = status
		return nil
	}
}
