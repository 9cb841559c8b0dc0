package generation

// SetArtifactPath returns a setter that records where the suite artifact
// was written.
func SetArtifactPath(path string) UpdateSetter {
	return func(s *Suite) error {
		s.ArtifactPath = path
		return nil
	}
}
