package gateway

// ConfigKeyTestMode switches the gateway to its sandbox environment
// when set to "true" or "1".
const ConfigKeyTestMode = "test_mode"

// Config holds gateway credentials and options as flat string pairs.
// The key set is gateway specific; each gateway documents its required
// keys and validates them in Configure.
type Config map[string]string

// Get returns the value for key, or empty string when absent
func (c Config) Get(key string) string {
	return c[key]
}

// GetBool interprets the value for key as a boolean flag
func (c Config) GetBool(key string) bool {
	v := c[key]
	return v == "true" || v == "1"
}

// Has reports whether key is present with a non-empty value
func (c Config) Has(key string) bool {
	return c[key] != ""
}

// ValidateRequired checks that every given key is present and non-empty.
// All missing keys are reported in a single *ConfigError.
func (c Config) ValidateRequired(gatewayName string, keys ...string) error {
	var missing []string
	for _, key := range keys {
		if c[key] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return &ConfigError{Gateway: gatewayName, MissingKeys: missing}
	}

	return nil
}
