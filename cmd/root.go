/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dupoin-hr",
	Short: "HR dashboard API server",
	Long: `Dupoin HR is a REST API server for the HR administration dashboard.
It exposes CRUD interfaces for the six Lark Base pipeline tables
(manpower, recruitment, candidates, onboarding, employees, offboarding),
a Xero accounting report integration, and a spreadsheet workbook editor.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lark/Xero 凭证通常放在 .env 中,先于 viper 加载
	cobra.OnInitialize(func() {
		_ = godotenv.Load()
	})
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
