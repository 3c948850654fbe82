package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/goodtune/mstat/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long:  `Validate the mstat configuration file for syntax and semantic errors.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts.configPath, dump)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Dump full configuration with non-default values highlighted")

	return cmd
}

func runValidate(cmd *cobra.Command, configPath string, dump bool) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	if configPath == "" {
		return fmt.Errorf("no configuration file given (use --config)")
	}

	// Load configuration
	if _, err := config.Load(configPath); err != nil {
		fmt.Fprintf(errOut, "❌ Configuration validation failed: %v\n", err)
		return err
	}

	// Check for unknown keys (always, not just with --dump)
	unknownKeys, err := config.UnknownKeys(configPath)
	if err != nil {
		_, _ = fmt.Fprintf(errOut, "⚠️  Warning: Could not check for unknown keys: %v\n", err)
	}

	_, _ = fmt.Fprintf(out, "✅ Configuration is valid: %s\n", configPath)

	// Warn about unknown keys
	if len(unknownKeys) > 0 {
		red := color.New(color.FgRed, color.Bold)
		fmt.Fprintln(out)
		_, _ = red.Fprintf(out, "⚠️  WARNING: Found %d unknown configuration key(s):\n", len(unknownKeys))
		for _, key := range unknownKeys {
			_, _ = red.Fprintf(out, "   - %s\n", key)
		}
		fmt.Fprintln(out, "\nThese keys will be ignored and may indicate typos.")
	}

	if dump {
		_, _ = fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
		_, _ = fmt.Fprintln(out, "FULL CONFIGURATION (values different from defaults are highlighted)")
		_, _ = fmt.Fprintln(out, strings.Repeat("=", 80))

		if err := dumpConfig(cmd, configPath); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(out, "\n"+strings.Repeat("=", 80))
	}

	return nil
}

// dumpConfig prints every known key grouped by section, highlighting values
// that differ from the defaults
func dumpConfig(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	effective := viper.New()
	config.SetDefaults(effective)
	effective.SetConfigFile(configPath)
	if err := effective.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	defaults := viper.New()
	config.SetDefaults(defaults)

	yellow := color.New(color.FgYellow, color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan, color.Bold)

	section := ""
	for _, key := range config.KnownKeys() {
		parent := key[:strings.LastIndex(key, ".")]
		if parent != section {
			section = parent
			_, _ = cyan.Fprintf(out, "\n[%s]\n", section)
		}

		name := "  " + key[len(parent)+1:]
		value := effective.Get(key)
		defaultValue := defaults.Get(key)
		if key == "storage.redis.password" {
			value = redactPassword(fmt.Sprint(value))
			defaultValue = redactPassword(fmt.Sprint(defaultValue))
		}

		dumpField(cmd, name, value, defaultValue, yellow, green)
	}

	return nil
}

// dumpField prints a field with color if it differs from default
func dumpField(cmd *cobra.Command, name string, value, defaultValue interface{}, modifiedColor, defaultColor *color.Color) {
	out := cmd.OutOrStdout()

	if fmt.Sprint(value) == fmt.Sprint(defaultValue) {
		_, _ = defaultColor.Fprintf(out, "%s = %v\n", name, value)
		return
	}
	_, _ = modifiedColor.Fprintf(out, "%s = %v (default: %v)\n", name, value, defaultValue)
}

func redactPassword(password string) string {
	if password == "" {
		return ""
	}
	return "********"
}
