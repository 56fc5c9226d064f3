package cmd

import (
	"github.com/spf13/cobra"

	"github.com/cloud-lever/roap/server"
	"github.com/cloud-lever/roap/util"
)

// startCmd represents the start service command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start service",
	Long:  "Start the allocation planning service",
	Run:   startServer,
}

func init() {
	startCmd.Flags().String("http-port", util.DEFAULT_HTTP_PORT, "Http Port")
	startCmd.Flags().String("config-file", util.CONFIG_FILE, "Configuration file path")
}

func startServer(cmd *cobra.Command, args []string) {
	port := cmd.Flag("http-port").Value.String()
	configFile := cmd.Flag("config-file").Value.String()
	server.Start(port, configFile)
}
