package compiler

import (
	"github.com/code-payments/message-compiler/pkg/config"
	"github.com/code-payments/message-compiler/pkg/config/env"
	"github.com/code-payments/message-compiler/pkg/config/memory"
	"github.com/code-payments/message-compiler/pkg/config/wrapper"
	"github.com/code-payments/message-compiler/pkg/solana"
)

const (
	envConfigPrefix = "MESSAGE_COMPILER_"

	PolicyConfigEnvName = envConfigPrefix + "POLICY"
	defaultPolicy       = "legacy"

	KeyOrderConfigEnvName = envConfigPrefix + "KEY_ORDER"
	defaultKeyOrder       = "base58"

	// Zero keeps the selected policy's limit
	MaxMessageSizeConfigEnvName = envConfigPrefix + "MAX_MESSAGE_SIZE"
	defaultMaxMessageSize       = 0

	PartialHeaderConfigEnvName = envConfigPrefix + "PARTIAL_HEADER"
	defaultPartialHeader       = false
)

type conf struct {
	policy         config.String
	keyOrder       config.String
	maxMessageSize config.Int64
	partialHeader  config.Bool
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			policy:         env.NewStringConfig(PolicyConfigEnvName, defaultPolicy),
			keyOrder:       env.NewStringConfig(KeyOrderConfigEnvName, defaultKeyOrder),
			maxMessageSize: env.NewInt64Config(MaxMessageSizeConfigEnvName, defaultMaxMessageSize),
			partialHeader:  env.NewBoolConfig(PartialHeaderConfigEnvName, defaultPartialHeader),
		}
	}
}

// Overrides holds in memory config sources, typically for tests or for
// values supplied by a CLI.
type Overrides struct {
	Policy         *memory.Config
	KeyOrder       *memory.Config
	MaxMessageSize *memory.Config
	PartialHeader  *memory.Config
}

// NewOverrides returns Overrides with no values set, so defaults apply.
func NewOverrides() *Overrides {
	return &Overrides{
		Policy:         memory.NewConfig(nil),
		KeyOrder:       memory.NewConfig(nil),
		MaxMessageSize: memory.NewConfig(nil),
		PartialHeader:  memory.NewConfig(nil),
	}
}

// WithOverrides returns configuration pulled from o.
func WithOverrides(o *Overrides) ConfigProvider {
	return func() *conf {
		return &conf{
			policy:         wrapper.NewStringConfig(o.Policy, defaultPolicy),
			keyOrder:       wrapper.NewStringConfig(o.KeyOrder, defaultKeyOrder),
			maxMessageSize: wrapper.NewInt64Config(o.MaxMessageSize, defaultMaxMessageSize),
			partialHeader:  wrapper.NewBoolConfig(o.PartialHeader, defaultPartialHeader),
		}
	}
}

// SetPolicy sets every override from p.
func (o *Overrides) SetPolicy(p solana.Policy) {
	o.Policy.SetValue(p.Name)
	o.KeyOrder.SetValue(p.KeyOrder.String())
	o.MaxMessageSize.SetValue(int64(p.MaxMessageSize))
	o.PartialHeader.SetValue(p.PartialHeader)
}
