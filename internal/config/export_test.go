package config

// ResetCache forgets every loaded type so tests can parse again.
func ResetCache() {
	resetCache()
}
