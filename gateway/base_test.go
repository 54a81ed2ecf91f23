package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testBase() *Base {
	return &Base{
		ShortName:     "mock",
		HumanName:     "Mock",
		FeatureSet:    []Feature{FeaturePay, FeatureRefund},
		ProductionURL: "https://api.example.com",
		SandboxURL:    "https://sandbox.example.com",
	}
}

func TestBase_Identity(t *testing.T) {
	b := testBase()
	assert.Equal(t, "mock", b.Name())
	assert.Equal(t, "Mock", b.DisplayName())
}

func TestBase_Supports(t *testing.T) {
	b := testBase()
	assert.True(t, b.Supports(FeaturePay))
	assert.True(t, b.Supports(FeatureRefund))
	assert.False(t, b.Supports(FeatureSubscription))
}

func TestBase_FeaturesReturnsCopy(t *testing.T) {
	b := testBase()
	features := b.Features()
	features[0] = FeatureSubscription

	assert.True(t, b.Supports(FeaturePay))
	assert.False(t, b.Supports(FeatureSubscription))
}

func TestBase_BaseURL(t *testing.T) {
	b := testBase()
	assert.Equal(t, "https://api.example.com", b.BaseURL())

	b.ApplyTestMode(Config{ConfigKeyTestMode: "true"})
	assert.Equal(t, "https://sandbox.example.com", b.BaseURL())

	b.ApplyTestMode(Config{})
	assert.Equal(t, "https://api.example.com", b.BaseURL())
}

func TestBase_EnsureSupports(t *testing.T) {
	b := testBase()
	assert.NoError(t, b.EnsureSupports(FeaturePay))

	err := b.EnsureSupports(FeatureSubscription)
	var unsupported *UnsupportedOperationError
	assert.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "mock", unsupported.Gateway)
	assert.Equal(t, FeatureSubscription, unsupported.Feature)
}
