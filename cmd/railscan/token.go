package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"railscan/internal/config"
	"railscan/internal/server"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Mint a token for POST /api/v1/trains",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := config.InitConfig(configFile)
		if err != nil {
			return err
		}
		if conf.Server.JwtSecret == "" {
			return errors.New("server.jwtSecret is not set")
		}
		token, err := server.NewToken(conf.Server.JwtSecret, args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}
