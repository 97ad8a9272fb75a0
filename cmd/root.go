package cmd

import (
	"github.com/carousell/ct-go/pkg/logger/log"
	"github.com/homeinv/barcode-router/internal/app"
	"github.com/homeinv/barcode-router/internal/kafka"
	"github.com/homeinv/barcode-router/internal/server"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "barcode-router",
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		app.Invoke(
			server.StartServer,
			kafka.StartScanConsumer,
		).Run()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
