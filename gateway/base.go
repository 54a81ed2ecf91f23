package gateway

// Base carries the state every gateway shares: identity, capability set
// and environment selection. Gateway implementations embed it and keep
// their own credential fields alongside.
type Base struct {
	ShortName     string
	HumanName     string
	FeatureSet    []Feature
	ProductionURL string
	SandboxURL    string
	TestMode      bool
}

func (b *Base) Name() string {
	return b.ShortName
}

func (b *Base) DisplayName() string {
	return b.HumanName
}

// Supports reports whether the gateway declares the given feature
func (b *Base) Supports(feature Feature) bool {
	for _, f := range b.FeatureSet {
		if f == feature {
			return true
		}
	}
	return false
}

// Features returns a copy of the declared capability set
func (b *Base) Features() []Feature {
	features := make([]Feature, len(b.FeatureSet))
	copy(features, b.FeatureSet)
	return features
}

// BaseURL returns the sandbox URL in test mode, the production URL otherwise
func (b *Base) BaseURL() string {
	if b.TestMode {
		return b.SandboxURL
	}
	return b.ProductionURL
}

// ApplyTestMode reads the test_mode flag from the config
func (b *Base) ApplyTestMode(cfg Config) {
	b.TestMode = cfg.GetBool(ConfigKeyTestMode)
}

// EnsureSupports returns an *UnsupportedOperationError when the feature
// is not declared. Gateways call it at the top of every capability
// method so unsupported operations never reach the network.
func (b *Base) EnsureSupports(feature Feature) error {
	if !b.Supports(feature) {
		return &UnsupportedOperationError{Gateway: b.ShortName, Feature: feature}
	}
	return nil
}
