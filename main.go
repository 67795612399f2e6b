package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/wealthpath/wp-api/cmd"
)

func configureViper() {
	// read config file
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/wealthpath/")
	viper.AddConfigPath("$HOME/.config/wealthpath")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		// all settings have defaults; a missing config file is fine
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn().Err(err).Msg("could not read config file")
		}
	}
}

func main() {
	configureViper()
	cmd.Execute()
}
