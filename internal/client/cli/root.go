package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/bizdesk/internal/client/iocli"
	"github.com/iudanet/bizdesk/internal/config"
)

// BuildInfo is the version information set via ldflags during build
type BuildInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// annotation for commands that run without opening local storage
const annotationNoSetup = "no-setup"

type rootOptions struct {
	configPath  string
	serverURL   string
	dbPath      string
	tokenPrompt bool
}

// session holds the client opened for the running command.
type session struct {
	cli *Cli
}

func (s *session) close() error {
	if s.cli == nil {
		return nil
	}
	err := s.cli.Close()
	s.cli = nil
	return err
}

// Execute runs the CLI with the given arguments and IO streams and returns
// the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, info BuildInfo) int {
	rootCmd, s := newRootCommand(stdin, stdout, stderr, info)

	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	// Закрываем и при ошибке команды: фоновые подтверждения должны завершиться
	if closeErr := s.close(); err == nil {
		err = closeErr
	}

	if err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer, info BuildInfo) (*cobra.Command, *session) {
	opts := &rootOptions{}
	s := &session{}
	terminal := iocli.New(stdin, stdout)

	cmd := &cobra.Command{
		Use:   "bizdesk",
		Short: "Local-first client for the bizdesk CRM",
		Long: "bizdesk keeps a local copy of workspaces, clients, projects, tasks, employees\n" +
			"and task assignments, refreshes it from the server in the background and\n" +
			"applies your changes locally before the server confirms them.",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsSetup(cmd) {
				return nil
			}

			cfg, err := loadConfig(opts, terminal)
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg.Log, stderr)
			c, err := Open(cmd.Context(), cfg, terminal, logger)
			if err != nil {
				return err
			}
			s.cli = c
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/bizdesk/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.serverURL, "server", "", "Server URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to local database (overrides config)")
	cmd.PersistentFlags().BoolVar(&opts.tokenPrompt, "token-prompt", false, "Read the access token from the terminal")

	cmd.AddCommand(
		newStatusCmd(s),
		newSyncCmd(s),
		newListCmd(s),
		newAddCmd(s),
		newUpdateCmd(s),
		newDeleteCmd(s),
		newIntervalCmd(s),
		newResetCmd(s),
		newWatchCmd(s),
		newVersionCmd(terminal, info),
	)

	return cmd, s
}

// needsSetup reports whether cmd works on the local cache.
func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoSetup] == "true" {
			return false
		}
		// help и completion генерирует cobra
		if c.Name() == "help" || c.Name() == "completion" {
			return false
		}
	}
	return true
}

// loadConfig читает файл и окружение, затем применяет флаги командной строки
func loadConfig(opts *rootOptions, terminal iocli.IO) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.serverURL != "" {
		cfg.ServerURL = opts.serverURL
	}
	if opts.dbPath != "" {
		cfg.Storage.Path = config.ExpandPath(opts.dbPath)
	}
	if opts.tokenPrompt {
		token, err := terminal.ReadPassword("Access token: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read access token: %w", err)
		}
		cfg.AccessToken = strings.TrimSpace(token)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd(terminal iocli.IO, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoSetup: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			terminal.Println("bizdesk client")
			terminal.Printf("Version:    %s\n", info.Version)
			terminal.Printf("Build Date: %s\n", info.BuildDate)
			terminal.Printf("Git Commit: %s\n", info.GitCommit)
		},
	}
}
