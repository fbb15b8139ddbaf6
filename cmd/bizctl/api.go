package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	identityapp "github.com/bizhub/backend/internal/application/identity"
	"github.com/bizhub/backend/internal/client"
	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/bizhub/backend/internal/infrastructure/logger"
	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	emailFlag    = "email"
	passwordFlag = "password"
	phoneFlag    = "phone"
	nameFlag     = "name"
	businessFlag = "business"
	planFlag     = "plan"
)

// Credentials fall back to BIZHUB_EMAIL and BIZHUB_PASSWORD
var credentialFlags = map[string]cobraflags.Flag{
	emailFlag: &cobraflags.StringFlag{
		Name:  emailFlag,
		Value: os.Getenv("BIZHUB_EMAIL"),
		Usage: "Account email",
	},
	passwordFlag: &cobraflags.StringFlag{
		Name:  passwordFlag,
		Value: os.Getenv("BIZHUB_PASSWORD"),
		Usage: "Account password",
	},
}

var registerFlags = map[string]cobraflags.Flag{
	phoneFlag: &cobraflags.StringFlag{
		Name:  phoneFlag,
		Usage: "Phone number in international format",
	},
	nameFlag: &cobraflags.StringFlag{
		Name:  nameFlag,
		Usage: "Full name",
	},
	businessFlag: &cobraflags.StringFlag{
		Name:  businessFlag,
		Usage: "Business name",
	},
	planFlag: &cobraflags.StringFlag{
		Name:  planFlag,
		Value: "weekly",
		Usage: "Subscription plan (free, weekly, monthly, yearly)",
	},
}

// newClient builds an API client. The response store follows the cache
// section of the config when one loads; the returned func releases it.
func newClient(ctx context.Context) (*client.Client, func()) {
	log := logger.New(logger.Config{Level: rootFlags[logLevelFlag].GetString(), Format: "console", Output: "stderr"})
	opts := []client.Option{client.WithLogger(log)}
	release := func() {}

	if cfg, err := config.Load(); err == nil {
		store, redisClient := cache.NewStore(ctx, cfg.Cache, cfg.Redis, log)
		opts = append(opts, client.WithStore(store))
		if redisClient != nil {
			release = func() { _ = redisClient.Close() }
		}
	} else {
		log.Debug("No config loaded, using in-memory response cache", zap.Error(err))
	}
	return client.New(rootFlags[apiURLFlag].GetString(), opts...), release
}

// signedIn runs fn with a client holding a fresh session and logs out after
func signedIn(ctx context.Context, fn func(c *client.Client) error) error {
	c, release := newClient(ctx)
	defer release()
	if _, err := c.Login(ctx, credentialFlags[emailFlag].GetString(), credentialFlags[passwordFlag].GetString()); err != nil {
		return userError(err)
	}
	defer func() {
		_ = c.Logout(context.WithoutCancel(ctx))
	}()
	return userError(fn(c))
}

// userError replaces a client failure with its user-facing message
func userError(err error) error {
	if err == nil {
		return nil
	}
	apiErr := client.Classify(err)
	if apiErr.Code != "" {
		return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Code)
	}
	return errors.New(apiErr.Message)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRegisterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, release := newClient(cmd.Context())
			defer release()
			reg, err := c.Register(cmd.Context(), identityapp.RegisterRequest{
				Email:            credentialFlags[emailFlag].GetString(),
				Password:         credentialFlags[passwordFlag].GetString(),
				Phone:            registerFlags[phoneFlag].GetString(),
				FullName:         registerFlags[nameFlag].GetString(),
				BusinessName:     registerFlags[businessFlag].GetString(),
				SubscriptionPlan: registerFlags[planFlag].GetString(),
			})
			if err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reg.Message)
			if reg.Token != "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Verification token:", reg.Token)
			}
			return nil
		},
	}
	cobraflags.RegisterMap(cmd, rootFlags)
	cobraflags.RegisterMap(cmd, credentialFlags)
	cobraflags.RegisterMap(cmd, registerFlags)
	return cmd
}

func newUsageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show plan usage for an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return signedIn(cmd.Context(), func(c *client.Client) error {
				report, err := c.Usage(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Plan: %s (%s)\n", report.Plan, report.Status)
				for _, r := range report.Resources {
					limit := fmt.Sprint(r.Limit)
					if r.Unlimited {
						limit = "unlimited"
					}
					fmt.Fprintf(w, "  %-9s %6d / %-9s %s\n", r.Resource, r.Current, limit, r.Status)
				}
				return nil
			})
		},
	}
	cobraflags.RegisterMap(cmd, rootFlags)
	cobraflags.RegisterMap(cmd, credentialFlags)
	return cmd
}

func newDashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print the dashboard summary as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return signedIn(cmd.Context(), func(c *client.Client) error {
				summary, err := c.Dashboard(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	cobraflags.RegisterMap(cmd, rootFlags)
	cobraflags.RegisterMap(cmd, credentialFlags)
	return cmd
}
