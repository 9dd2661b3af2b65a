package cmd

import (
	"context"
	"fmt"

	"github.com/jaypeewhat/ThriftStore/client"
	"github.com/jaypeewhat/ThriftStore/configs"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
)

var (
	apiBase  string
	email    string
	password string
)

// signIn logs in with flags falling back to API_BASE/CLIENT_EMAIL/CLIENT_PASSWORD.
func signIn(ctx context.Context) (*client.Session, *configs.Config, logger.Logger, error) {
	cfg, err := configs.LoadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiBase == "" {
		apiBase = cfg.Client.APIBase
	}
	if email == "" {
		email = cfg.Client.Email
	}
	if password == "" {
		password = cfg.Client.Password
	}
	if email == "" || password == "" {
		return nil, nil, nil, fmt.Errorf("email and password are required (--email/--password or CLIENT_EMAIL/CLIENT_PASSWORD)")
	}

	log, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	api := client.NewAPI(apiBase, nil)
	if _, err := api.Login(ctx, email, password); err != nil {
		return nil, nil, nil, fmt.Errorf("login: %w", err)
	}
	sess, err := client.Init(ctx, api, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return sess, cfg, log, nil
}
