package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig loads the optional config file; viper defaults at the wiring
// points cover a missing file, so callers may treat the error as advisory.
func ReadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./data/")

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return nil
}
