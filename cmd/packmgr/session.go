package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/granite-tools/packmgr/internal/errx"
	"github.com/granite-tools/packmgr/pkg/api"
	"github.com/granite-tools/packmgr/pkg/history"
	"github.com/granite-tools/packmgr/pkg/sdk"
)

// session is a logged-in client plus the history store its operations are
// recorded in.
type session struct {
	client  *sdk.Client
	history *history.Store
}

func serverConfig() *api.Config {
	return api.DefaultConfig().Merge(&api.Config{
		BaseURL:        viper.GetString("server.url"),
		Username:       viper.GetString("server.user"),
		Password:       viper.GetString("server.password"),
		RequestTimeout: viper.GetDuration("server.request-timeout"),
		ServiceTimeout: viper.GetDuration("server.service-timeout"),
	})
}

func openSession(ctx context.Context) (*session, error) {
	cfg := serverConfig()
	if viper.GetString("server.password") == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := promptPassword(cfg.Username)
		if err != nil {
			return nil, err
		}
		cfg.Password = password
	}

	client, err := sdk.NewClient(cfg, sdk.WithLogger(logger))
	if err != nil {
		return nil, errx.Wrap(ErrCreateClient, err)
	}

	if viper.GetBool("server.wait") {
		if err := client.WaitForService(ctx); err != nil {
			return nil, errx.Wrap(ErrWaitForService, err)
		}
	}
	ok, err := client.Login(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errx.With(ErrLoginRejected, ": user %q at %s", cfg.Username, client.BaseURL())
	}

	s := &session{client: client}
	s.history, err = openHistory(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func promptPassword(user string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errx.Wrap(ErrReadPassword, err)
	}
	return string(password), nil
}

func openHistory(ctx context.Context) (*history.Store, error) {
	if viper.GetBool("history.disabled") {
		return nil, nil
	}
	path := viper.GetString("history.path")
	if path == "" {
		path = history.DefaultPath()
	}
	store, err := history.Open(ctx, path, logger)
	if err != nil {
		return nil, errx.Wrap(ErrOpenHistory, err)
	}
	return store, nil
}

// record stores a receipt. Failures only warn; the remote operation already
// happened.
func (s *session) record(ctx context.Context, r history.Receipt) {
	if s.history == nil {
		return
	}
	if _, err := s.history.Record(ctx, r); err != nil {
		logger.Warn("failed to record history", zap.Error(err))
	}
}

func (s *session) close() {
	if s.history != nil {
		_ = s.history.Close()
	}
}
