package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jrsteele09/go-scenario-client/ai"
	"github.com/jrsteele09/go-scenario-client/httpclient"
	"github.com/jrsteele09/go-scenario-client/internal/config"
	"github.com/jrsteele09/go-scenario-client/storage"
	"github.com/jrsteele09/go-scenario-client/store"
	"github.com/jrsteele09/go-scenario-client/token"
	"github.com/jrsteele09/go-scenario-client/users"
	"github.com/rs/zerolog"
)

// app wires the client stack for one CLI invocation
type app struct {
	config  config.Config
	logger  zerolog.Logger
	storage storage.Storage
	tokens  token.Holder
	store   *store.Store
	client  *httpclient.Client
	users   *users.Service
	ai      *ai.Service
	out     io.Writer
}

type globalFlags struct {
	configPath string
	logLevel   string
	storageDir string
	apiURL     string
}

// cliNavigator stands in for the browser router: the only route the
// client asks for is the login page.
type cliNavigator struct {
	w io.Writer
}

func (n cliNavigator) Navigate(path string) {
	if path == httpclient.LoginRoute {
		fmt.Fprintf(n.w, "Session expired or not signed in, run `%s login`\n", appName)
		return
	}
	fmt.Fprintf(n.w, "Navigate to %s\n", path)
}

func newApp(flags globalFlags) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	logLevel := cfg.GetLogLevel()
	if flags.logLevel != "" {
		logLevel = flags.logLevel
	}
	logger := newLogger(logLevel)

	storageDir := cfg.GetStorageDir()
	if flags.storageDir != "" {
		storageDir = flags.storageDir
	}
	var st storage.Storage = storage.NewInMemory()
	if storageDir != "" {
		if st, err = storage.NewDiskv(storageDir); err != nil {
			return nil, err
		}
	} else {
		logger.Warn().Msg("no storage directory configured, session will not outlive this command")
	}

	s, err := store.New(st, store.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	apiURL := cfg.GetAPIURL()
	if flags.apiURL != "" {
		apiURL = flags.apiURL
	}
	tokens := token.NewStorageHolder(st)
	client, err := httpclient.New(apiURL, tokens, cliNavigator{w: os.Stderr},
		httpclient.WithLogger(logger),
		httpclient.WithStore(s),
		httpclient.WithTimeout(cfg.GetRequestTimeout()),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		config:  cfg,
		logger:  logger,
		storage: st,
		tokens:  tokens,
		store:   s,
		client:  client,
		users:   users.NewService(client),
		ai:      ai.NewService(client),
		out:     os.Stdout,
	}, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Str("app", appName).
		Logger()
}

// printJSON writes v indented; raw JSON payloads are re-indented as is
func (a *app) printJSON(v any) error {
	var data []byte
	var err error
	switch raw := v.(type) {
	case json.RawMessage:
		if len(raw) == 0 {
			return nil
		}
		data, err = json.MarshalIndent(raw, "", "  ")
	default:
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// printResult prints a read-style result. Failures other than 401 are
// reported as errors here because the CLI is the caller that surfaces them.
func (a *app) printResult(r httpclient.Result) error {
	switch r.Kind {
	case httpclient.ResultOK:
		return a.printJSON(r.Value())
	case httpclient.ResultUnauthorized:
		return nil
	default:
		return r.Err
	}
}
