package executor

func SetArtifactPath(path string) UpdateSetter {
	return func(e *Execution) error {
		e.ArtifactPath = path
		return nil
	}
}
