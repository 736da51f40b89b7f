package config

import (
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ReadConfigFile points v at cfgFile, or at $HOME/<defaultName>.yaml when cfgFile is empty, and reads it.
// A missing default file is not an error; a missing explicit file is.
func ReadConfigFile(v *viper.Viper, cfgFile string, defaultName string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "finding home directory")
		}
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(defaultName)
	}

	if err := v.ReadInConfig(); err != nil {
		switch err.(type) {
		case viper.ConfigFileNotFoundError:
			if cfgFile == "" {
				return nil
			}
		case *os.PathError:
			if cfgFile == "" {
				return nil
			}
		}
		return errors.Wrapf(err, "reading config file %s", v.ConfigFileUsed())
	}
	return nil
}

// Load unmarshals v into config using CustomHooks and validates the result's struct tags.
func Load(v *viper.Viper, config any) error {
	if err := v.Unmarshal(config, CustomHooks...); err != nil {
		return errors.WithStack(err)
	}
	return Validate(config)
}
