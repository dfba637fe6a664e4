package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jrsteele09/go-scenario-client/ai"
	"github.com/jrsteele09/go-scenario-client/httpclient"
	"github.com/jrsteele09/go-scenario-client/internal/utils"
	"github.com/jrsteele09/go-scenario-client/token"
	"github.com/jrsteele09/go-scenario-client/users"
	"github.com/spf13/cobra"
)

func rootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Client for the scenario trainer API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.storageDir, "storage-dir", "", "Directory holding the session between commands")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", "", "Backend base URL")

	// withApp builds the client stack before running fn
	withApp := func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			a.out = cmd.OutOrStdout()
			return fn(cmd.Context(), a, args)
		}
	}

	cmd.AddCommand(
		loginCmd(withApp),
		logoutCmd(withApp),
		statusCmd(withApp),
		usersCmd(withApp),
		passwordCmd(withApp),
		chatCmd(withApp),
		referencesCmd(withApp),
		scenarioCmd(withApp),
		improveCmd(withApp),
		downloadCmd(withApp),
		uploadCmd(withApp),
		versionCmd(),
	)
	return cmd
}

type runner func(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error

func loginCmd(withApp runner) *cobra.Command {
	var creds httpclient.Credentials
	var noRedirect bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange username and password for an access token",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if creds.Password == "" {
				creds.Password = os.Getenv("SCENARIO_PASSWORD")
			}
			result := a.client.Login(ctx, creds, !noRedirect)
			if !result.Success {
				return fmt.Errorf("%s", result.Msg)
			}
			if u, err := users.Decode(result.Parsed.User); err == nil {
				fmt.Fprintf(a.out, "Signed in as %s\n", u.DisplayName())
				return nil
			}
			fmt.Fprintln(a.out, "Signed in")
			return nil
		}),
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "Username or email")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (default $SCENARIO_PASSWORD)")
	cmd.Flags().BoolVar(&noRedirect, "no-redirect", false, "Do not report a login redirect on 401")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func logoutCmd(withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session and its token",
		RunE: withApp(func(_ context.Context, a *app, _ []string) error {
			if err := a.store.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		}),
	}
}

// sessionStatus is what the status command prints
type sessionStatus struct {
	LoggedIn        bool            `json:"loggedIn"`
	ImproveAccepted bool            `json:"improveAccepted"`
	User            json.RawMessage `json:"user,omitempty"`
	HasScenario     bool            `json:"hasScenario"`
	Token           *tokenStatus    `json:"token,omitempty"`
}

type tokenStatus struct {
	Subject   string    `json:"subject,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Expired   bool      `json:"expired"`
}

func statusCmd(withApp runner) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		RunE: withApp(func(_ context.Context, a *app, _ []string) error {
			s := a.store.Snapshot()
			status := sessionStatus{
				LoggedIn:        s.LoggedIn,
				ImproveAccepted: s.ImproveAccepted,
				HasScenario:     len(s.Scenario) > 0 && string(s.Scenario) != "{}",
			}
			if s.HasUser() {
				status.User = s.User
			}
			if claims, err := token.Inspect(a.tokens.Token()); err == nil {
				status.Token = &tokenStatus{
					Subject:   claims.Subject,
					ExpiresAt: claims.ExpiresAt,
					Expired:   claims.Expired(time.Now()),
				}
			}
			return a.printJSON(status)
		}),
	}
}

func usersCmd(withApp runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			return a.printResult(a.users.List(ctx))
		}),
	}

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			return a.printResult(a.users.GetByID(ctx, args[0]))
		}),
	}

	var signup users.SignupRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Sign up a new user",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			body, err := a.users.Create(ctx, signup)
			if err != nil {
				return err
			}
			return a.printJSON(body)
		}),
	}
	create.Flags().StringVar(&signup.Email, "email", "", "Email address")
	create.Flags().StringVar(&signup.Password, "password", "", "Password")
	create.Flags().StringVar(&signup.Username, "username", "", "Username")
	create.Flags().StringVar(&signup.FirstName, "first-name", "", "First name")
	create.Flags().StringVar(&signup.LastName, "last-name", "", "Last name")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	var update users.UpdateRequest
	var active bool
	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a user's profile",
		Args:  cobra.ExactArgs(1),
	}
	updateCmd.RunE = withApp(func(ctx context.Context, a *app, args []string) error {
		if updateCmd.Flags().Changed("active") {
			update.IsActive = utils.Ptr(active)
		}
		a.logger.Debug().Str("id", args[0]).Bool("active", utils.Value(update.IsActive)).Msg("updating user")
		body, err := a.users.Update(ctx, args[0], update)
		if err != nil {
			return err
		}
		return a.printJSON(body)
	})
	updateCmd.Flags().StringVar(&update.Email, "email", "", "Email address")
	updateCmd.Flags().StringVar(&update.Username, "username", "", "Username")
	updateCmd.Flags().StringVar(&update.FirstName, "first-name", "", "First name")
	updateCmd.Flags().StringVar(&update.LastName, "last-name", "", "Last name")
	updateCmd.Flags().BoolVar(&active, "active", true, "Whether the account is active")

	cmd.AddCommand(list, get, create, updateCmd)
	return cmd
}

func passwordCmd(withApp runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Reset or change passwords",
	}

	reset := &cobra.Command{
		Use:   "reset <email>",
		Short: "Email a password recovery link",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			body, err := a.users.ResetPassword(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printJSON(body)
		}),
	}

	var change users.ChangePasswordRequest
	changeCmd := &cobra.Command{
		Use:   "change",
		Short: "Change the signed-in user's password",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			body, err := a.users.ChangePassword(ctx, change)
			if err != nil {
				return err
			}
			return a.printJSON(body)
		}),
	}
	changeCmd.Flags().StringVar(&change.CurrentPassword, "current", "", "Current password")
	changeCmd.Flags().StringVar(&change.NewPassword, "new", "", "New password")
	_ = changeCmd.MarkFlagRequired("current")
	_ = changeCmd.MarkFlagRequired("new")

	cmd.AddCommand(reset, changeCmd)
	return cmd
}

func chatCmd(withApp runner) *cobra.Command {
	var system, metadata string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to the AI trainer",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			req := ai.ChatRequest{MetaData: metadata}
			if system != "" {
				req.Messages = append(req.Messages, ai.Message{Role: ai.RoleSystem, Content: system})
			}
			req.Messages = append(req.Messages, ai.Message{Role: ai.RoleUser, Content: args[0]})

			body, err := a.ai.SendMessage(ctx, req)
			if err != nil {
				return err
			}
			return a.printJSON(body)
		}),
	}
	cmd.Flags().StringVar(&system, "system", "", "System prompt")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Metadata passed with the prompt")
	return cmd
}

func referencesCmd(withApp runner) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "references <question>",
		Short: "Fetch the references for a question",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			body, err := a.ai.References(ctx, ai.ReferencesRequest{Question: args[0], Limit: limit})
			if err != nil {
				return err
			}
			return a.printJSON(body)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum references to return")
	return cmd
}

func scenarioCmd(withApp runner) *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Generate a scenario and keep it in the session",
		RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
			if cached {
				return a.printJSON(a.store.Scenario())
			}
			r := a.ai.Scenario(ctx)
			if !r.OK() {
				return a.printResult(r)
			}
			if err := a.store.AddScenario(r.Value()); err != nil {
				return err
			}
			return a.printJSON(r.Value())
		}),
	}
	cmd.Flags().BoolVar(&cached, "cached", false, "Print the last fetched scenario instead of generating one")
	return cmd
}

func improveCmd(withApp runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "improve",
		Short: "Manage the improve-the-AI agreement",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "accept",
		Short: "Accept the improve-the-AI terms for this session",
		RunE: withApp(func(_ context.Context, a *app, _ []string) error {
			if err := a.store.AcceptImprove(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Improve terms accepted")
			return nil
		}),
	})
	return cmd
}

func downloadCmd(withApp runner) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <path>",
		Short: "Download a file from the API",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			r := a.client.DownloadFile(ctx, args[0])
			if !r.OK() {
				return a.printResult(r)
			}
			if output == "" {
				output = filepath.Base(args[0])
			}
			if err := os.WriteFile(output, r.Body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(r.Body), output)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: last path element)")
	return cmd
}

func uploadCmd(withApp runner) *cobra.Command {
	var field string
	var fields map[string]string

	cmd := &cobra.Command{
		Use:   "upload <path> <file>",
		Short: "Upload a file to the API as multipart form data",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			form := &httpclient.MultipartForm{Fields: fields}
			form.AddFile(field, filepath.Base(args[1]), f)

			resp, err := a.client.UploadFile(ctx, args[0], form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "HTTP %d\n%s\n", resp.StatusCode, resp.Body)
			return nil
		}),
	}
	cmd.Flags().StringVar(&field, "field", "file", "Form field name for the file")
	cmd.Flags().StringToStringVar(&fields, "form", nil, "Extra form fields (key=value)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			displayAppname(appName)
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}
