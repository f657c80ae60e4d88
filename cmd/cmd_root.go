// Package cmd is the sentinel CLI surface (§6): a single "serve"
// command (also the root's default action) plus the flag set that
// overlays the config file, per the teacher's cobra-based command
// tree.
package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/rustyeddy/sentinel/config"
	"github.com/spf13/cobra"
)

var (
	cmdOutput io.Writer
	overlay   config.Overlay
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "sentinel routes BLE and MQTT events through configured automation rules",
	Long: `sentinel is a configuration-driven automation engine for small-home
sensor networks: it watches BLE advertisements and MQTT messages, evaluates
rule conditions against current and historical state, and dispatches actions
when a rule's trigger fires.`,
	RunE: sentinelRun,
}

func init() {
	cmdOutput = os.Stdout
	rootCmd.SetOut(cmdOutput)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sentinel.yaml", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&overlay.Debug, "debug", "d", false, "force debug-level logging")

	rootCmd.PersistentFlags().DurationVar(&overlay.ScannerCycle, "scanner-cycle", 0, "seconds between BLE scan cycles")
	rootCmd.PersistentFlags().DurationVar(&overlay.ScannerDuration, "scanner-duration", 0, "seconds active per BLE scan cycle")
	rootCmd.PersistentFlags().StringVar(&overlay.ScannerInterface, "scanner-interface", "", "BLE adapter interface name")

	var mqttEnabled, mqttDisabled bool
	rootCmd.PersistentFlags().BoolVar(&mqttEnabled, "mqtt", false, "enable the MQTT client")
	rootCmd.PersistentFlags().BoolVar(&mqttDisabled, "no-mqtt", false, "disable the MQTT client")
	rootCmd.PersistentFlags().StringVar(&overlay.MQTTHost, "mqtt-host", "", "MQTT broker host")
	rootCmd.PersistentFlags().IntVar(&overlay.MQTTPort, "mqtt-port", 0, "MQTT broker port")
	rootCmd.PersistentFlags().StringVar(&overlay.MQTTUsername, "mqtt-username", "", "MQTT username")
	rootCmd.PersistentFlags().StringVar(&overlay.MQTTPassword, "mqtt-password", "", "MQTT password")
	rootCmd.PersistentFlags().DurationVar(&overlay.MQTTReconnectInterval, "mqtt-reconnect-interval", 0, "MQTT reconnect backoff")

	var promEnabled, promDisabled bool
	rootCmd.PersistentFlags().BoolVar(&promEnabled, "prometheus-exporter-enabled", false, "enable the metrics scrape endpoint")
	rootCmd.PersistentFlags().BoolVar(&promDisabled, "no-prometheus-exporter-enabled", false, "disable the metrics scrape endpoint")
	rootCmd.PersistentFlags().IntVar(&overlay.PrometheusPort, "prometheus-exporter-port", 0, "metrics scrape endpoint port")

	rootCmd.PersistentFlags().StringVar(&overlay.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	cobra.OnInitialize(func() {
		if mqttEnabled {
			v := true
			overlay.MQTTEnabled = &v
		} else if mqttDisabled {
			v := false
			overlay.MQTTEnabled = &v
		}
		if promEnabled {
			v := true
			overlay.PrometheusEnabled = &v
		} else if promDisabled {
			v := false
			overlay.PrometheusEnabled = &v
		}
	})

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetRootCmd returns the root cobra command, used by main and by tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the CLI, returning the process exit code (§6: 0 on a
// clean run or graceful shutdown, 1 on any startup or reload-fatal
// error).
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		return 1
	}
	return 0
}

func sentinelRun(cmd *cobra.Command, args []string) error {
	return serveRun(cmd, args)
}
