package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/moodly/moodly-client/client"
	"github.com/moodly/moodly-client/internal/config"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/moodly/moodly-client/internal/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serviceURL string
	stateDir   string
	locale     string
	debug      bool
)

const requestTimeout = 30 * time.Second

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	cfg, cfgErr := config.New()
	if cfgErr != nil {
		cfg = config.NewForTesting()
		cfg.Environment = config.EnvDevelopment
	}

	rootCmd := &cobra.Command{
		Use:           "moodly",
		Short:         "Moodly command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			log.Logger = logger.NewConsole(os.Stderr, "moodly-cli")
			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(logger.ParseLevel(cfg.LogLevel))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&serviceURL, "service-url", cfg.BaseURL, "Base URL of the Moodly backend")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", cfg.StateDir, "Directory holding the local state database (default ~/.moodly)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", cfg.Locale, "Language for error messages (en, es)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", cfg.Debug, "Enable verbose debug output")

	rootCmd.AddCommand(newRegisterCmd(cfg))
	rootCmd.AddCommand(newLoginCmd(cfg))
	rootCmd.AddCommand(newLogoutCmd(cfg))
	rootCmd.AddCommand(newFlushLogoutCmd(cfg))
	rootCmd.AddCommand(newWhoamiCmd(cfg))
	rootCmd.AddCommand(newLogMoodCmd(cfg))
	rootCmd.AddCommand(newLatestCmd(cfg))
	rootCmd.AddCommand(newHistoryCmd(cfg))
	rootCmd.AddCommand(newStatsCmd(cfg))
	rootCmd.AddCommand(newGlobalCmd(cfg))
	rootCmd.AddCommand(newSelectedCmd(cfg))
	rootCmd.AddCommand(newInsightsCmd(cfg))
	rootCmd.AddCommand(newCountryCmd(cfg))
	rootCmd.AddCommand(newPhotoCmd(cfg))
	rootCmd.AddCommand(newPasswordCmd(cfg))
	rootCmd.AddCommand(newDeleteAccountCmd(cfg))

	return rootCmd
}

// withClient opens the state store, builds a client and runs fn with a bounded context.
func withClient(cmd *cobra.Command, cfg *config.Config, fn func(ctx context.Context, c *client.Client) error) error {
	var (
		store *localstate.SQLiteStore
		err   error
	)
	if stateDir != "" {
		store, err = localstate.OpenDir(stateDir)
	} else {
		store, err = localstate.OpenDefault()
	}
	if err != nil {
		return err
	}

	opts := append(cfg.ClientOptions(),
		client.WithStore(store),
		client.WithLogger(log.Logger),
		client.WithLocale(locale),
		client.WithDebugLogging(debug),
	)
	c, err := client.New(serviceURL, opts...)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
	defer cancel()

	start := time.Now()
	err = fn(ctx, c)
	log.Debug().Str("command", cmd.CommandPath()).Dur("elapsed", time.Since(start)).Err(err).Msg("command finished")
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRegisterCmd(cfg *config.Config) *cobra.Command {
	var email, password, name, country string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				u, err := c.Register(ctx, client.RegisterRequest{Email: email, Password: password, Name: name, Country: country})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", u.Email, u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password, at least 8 characters (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&country, "country", "", "ISO 3166-1 alpha-2 country code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLoginCmd(cfg *config.Config) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				u, err := c.Login(ctx, client.LoginRequest{Email: email, Password: password})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", u.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; a failed server call is retried by later commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				if err := c.Logout(ctx); err != nil {
					return err
				}
				if c.PendingLogout() {
					fmt.Fprintln(cmd.OutOrStdout(), "Signed out locally; the server will be notified later")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
				return nil
			})
		},
	}
}

func newFlushLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-logout",
		Short: "Deliver a pending logout to the server now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				if !c.PendingLogout() {
					fmt.Fprintln(cmd.OutOrStdout(), "No pending logout")
					return nil
				}
				delivered, err := c.FlushLogout(ctx)
				if err != nil {
					return err
				}
				if !delivered {
					fmt.Fprintln(cmd.OutOrStdout(), "Pending logout dropped")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Pending logout delivered")
				return nil
			})
		},
	}
}

func newWhoamiCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				u, err := c.Me(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, u)
			})
		},
	}
}

func newLogMoodCmd(cfg *config.Config) *cobra.Command {
	var mood, note string
	cmd := &cobra.Command{
		Use:   "log-mood",
		Short: "Record how you feel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				e, err := c.CreateMood(ctx, client.CreateMoodRequest{Mood: client.Mood(mood), Note: note})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged %s at %s\n", e.Mood, e.CreatedAt.Local().Format(time.Kitchen))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&mood, "mood", "", "happy, calm, neutral, sad, angry, anxious, tired or excited (required)")
	cmd.Flags().StringVar(&note, "note", "", "Optional note, up to 500 characters")
	_ = cmd.MarkFlagRequired("mood")
	return cmd
}

func newLatestCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent mood",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				e, err := c.LatestMood(ctx)
				if err != nil {
					return err
				}
				if e == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No moods yet")
					return nil
				}
				return printJSON(cmd, e)
			})
		},
	}
}

func newHistoryCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recorded moods",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				h, err := c.MoodHistory(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, h)
			})
		},
	}
}

func newStatsCmd(cfg *config.Config) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:       "stats {dominant|happiness|frequency|through-day}",
		Short:     "Show a personal statistic",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"dominant", "happiness", "frequency", "through-day"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p := client.Period(period)
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				var (
					v   any
					err error
				)
				switch args[0] {
				case "dominant":
					v, err = c.DominantMood(ctx, p)
				case "happiness":
					v, err = c.HappinessIndex(ctx, p)
				case "frequency":
					v, err = c.MoodFrequency(ctx, p)
				case "through-day":
					v, err = c.ThroughDay(ctx, p)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd, v)
			})
		},
	}
	cmd.Flags().StringVar(&period, "period", string(client.PeriodWeek), "today, week or month")
	return cmd
}

func newGlobalCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show statistics across all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				g, err := c.GlobalStats(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, g)
			})
		},
	}
}

func newSelectedCmd(cfg *config.Config) *cobra.Command {
	var mood string
	cmd := &cobra.Command{
		Use:   "selected",
		Short: "Show how other users experience a mood",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				s, err := c.MoodSelectedStats(ctx, client.Mood(mood))
				if err != nil {
					return err
				}
				return printJSON(cmd, s)
			})
		},
	}
	cmd.Flags().StringVar(&mood, "mood", "", "Mood to inspect (required)")
	_ = cmd.MarkFlagRequired("mood")
	return cmd
}

func newInsightsCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "insights {current|previous|generate}",
		Short:     "Show or generate AI insight reports",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"current", "previous", "generate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				var (
					ins *client.Insights
					err error
				)
				switch args[0] {
				case "current":
					ins, err = c.CurrentInsights(ctx)
				case "previous":
					ins, err = c.PreviousInsights(ctx)
				case "generate":
					ins, err = c.GenerateInsights(ctx)
					if errors.Is(err, client.ErrGenerationInProgress) {
						fmt.Fprintln(cmd.OutOrStdout(), "A report is already being generated; try again shortly")
						return nil
					}
				}
				if err != nil {
					return err
				}
				return printJSON(cmd, ins)
			})
		},
	}
}

func newCountryCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "country CODE",
		Short: "Change the account country",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				u, err := c.UpdateCountry(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Country set to %s\n", u.Country)
				return nil
			})
		},
	}
}

func newPhotoCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "photo URL",
		Short: "Change the profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				u, err := c.UpdatePhoto(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Photo set to %s\n", u.PhotoURL)
				return nil
			})
		},
	}
}

func newPasswordCmd(cfg *config.Config) *cobra.Command {
	var current, next string
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				if err := c.ChangePassword(ctx, client.ChangePasswordRequest{CurrentPassword: current, NewPassword: next}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&current, "current", "", "Current password (required)")
	cmd.Flags().StringVar(&next, "new", "", "New password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func newDeleteAccountCmd(cfg *config.Config) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Permanently delete the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete the account without --yes")
			}
			return withClient(cmd, cfg, func(ctx context.Context, c *client.Client) error {
				if err := c.DeleteAccount(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Account deleted")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
