package main

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initConfig binds the command's flags to v and layers the environment
// (SOIR_ prefix) and the config file underneath them.
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix("SOIR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	explicit := v.GetString("config")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil
		}
		v.AddConfigPath(home)
		v.SetConfigName(".soir")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	if v.GetBool("no-color") {
		color.NoColor = true
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// useColor reports whether output written to w should be colored.
func useColor(v *viper.Viper, w io.Writer) bool {
	return !v.GetBool("no-color") && !color.NoColor && isTerminal(w)
}

// newLogger returns a console logger on w. Only warnings are shown unless
// verbose is set.
func newLogger(v *viper.Viper, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, NoColor: !useColor(v, w)}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
