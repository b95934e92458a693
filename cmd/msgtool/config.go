package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/code-payments/message-compiler/pkg/compiler"
)

type cliConfig struct {
	LogLevel string `mapstructure:"log_level"`
	AppName  string `mapstructure:"app_name"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	Policy         string `mapstructure:"policy"`
	KeyOrder       string `mapstructure:"key_order"`
	MaxMessageSize int64  `mapstructure:"max_message_size"`
	PartialHeader  bool   `mapstructure:"partial_header"`
}

var defaultConfig = cliConfig{
	LogLevel: "warn",
	AppName:  "msgtool",
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("app_name", "APP_NAME")
	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	_ = viper.BindEnv("policy", compiler.PolicyConfigEnvName)
	_ = viper.BindEnv("key_order", compiler.KeyOrderConfigEnvName)
	_ = viper.BindEnv("max_message_size", compiler.MaxMessageSizeConfigEnvName)
	_ = viper.BindEnv("partial_header", compiler.PartialHeaderConfigEnvName)

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", defaultConfig.LogLevel, "log level")
	flags.String("policy", "", "compilation policy (legacy or device)")
	flags.String("key-order", "", "account tie break order (base58 or raw)")
	flags.Int64("max-message-size", 0, "override the policy's maximum message size")
	flags.Bool("partial-header", false, "keep the header in partial encodings")

	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("policy", flags.Lookup("policy"))
	_ = viper.BindPFlag("key_order", flags.Lookup("key-order"))
	_ = viper.BindPFlag("max_message_size", flags.Lookup("max-message-size"))
	_ = viper.BindPFlag("partial_header", flags.Lookup("partial-header"))
}

func loadConfig() (cliConfig, error) {
	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return cliConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}
	return config, nil
}
