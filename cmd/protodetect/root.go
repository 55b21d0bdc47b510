package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	sigsetPath string
	noBuiltins bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "protodetect",
	Short: "Application-layer protocol detection core",
	Long:  `protodetect loads byte-pattern protocol signatures and identifies the application protocol of a direction-tagged buffer.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.protodetect.yaml)")
	rootCmd.PersistentFlags().StringVar(&sigsetPath, "sigset", "", "path to a YAML signature-set file to register in addition to built-ins")
	rootCmd.PersistentFlags().BoolVar(&noBuiltins, "no-builtins", false, "skip registering the built-in pattern set")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("sigset", rootCmd.PersistentFlags().Lookup("sigset"))
	_ = viper.BindPFlag("no_builtins", rootCmd.PersistentFlags().Lookup("no-builtins"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(detectCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".protodetect")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
