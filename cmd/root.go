package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault 内置默认配置，首次运行且找不到配置文件时写出
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "note-attachment-service",
	Short: "Note Attachment Service",
	Long:  "Stores per-note file attachments in object storage and dispatches attachment archive requests.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
