package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/williamsps/maintenance-portal/internal/portalclient"
)

const (
	keyServer        = "server"
	keyToken         = "token"
	keyClientContext = "client-context"
	keyVerbose       = "verbose"
)

type app struct {
	v   *viper.Viper
	log zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "portalctl",
		Short:         "Operate the maintenance portal from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			level := zerolog.WarnLevel
			if a.v.GetBool(keyVerbose) {
				level = zerolog.DebugLevel
			}
			a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				Level(level).With().Timestamp().Logger()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyServer, "http://localhost:8080", "portal base URL")
	flags.String(keyToken, "", "bearer token (see the login command)")
	flags.String(keyClientContext, "", "client id to act in (admins only)")
	flags.BoolP(keyVerbose, "v", false, "verbose logging")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix("PORTAL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.loginCommand(), a.quotesCommand(), a.alertsCommand())
	return root
}

// client builds an API client; requireToken rejects commands run without one.
func (a *app) client(requireToken bool) (*portalclient.Client, error) {
	session := portalclient.NewSession(a.log)
	if token := a.v.GetString(keyToken); token != "" {
		if err := session.Init(token); err != nil {
			return nil, err
		}
	} else if requireToken {
		return nil, errors.New("no token: run `portalctl login` and set PORTAL_TOKEN, or pass --token")
	}

	if raw := a.v.GetString(keyClientContext); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --client-context: %w", err)
		}
		session.SetClientContext(&id)
	}
	return portalclient.New(a.v.GetString(keyServer), session), nil
}

func (a *app) loginCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print a bearer token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("PORTAL_PASSWORD")
			}
			client, err := a.client(false)
			if err != nil {
				return err
			}
			result, err := client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.log.Debug().Str("user", result.User.Email).Time("expires_at", result.ExpiresAt).Msg("logged in")
			fmt.Fprintf(cmd.ErrOrStderr(), "logged in as %s (%s), token valid until %s\n",
				result.User.Name, result.User.Role, result.ExpiresAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintln(cmd.OutOrStdout(), result.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or PORTAL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
