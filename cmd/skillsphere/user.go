package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skillsphere/web/internal/core/domain"
	"github.com/skillsphere/web/internal/core/ports"
	"github.com/skillsphere/web/internal/core/service"
	mongodb "github.com/skillsphere/web/internal/infrastructure/db/mongo"
	"github.com/skillsphere/web/internal/pkg/config"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	var in ports.RegisterInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Long: `Create an account directly in the user store.

Unlike the sign-up page this can create admin accounts.

Examples:
  skillsphere user create --email ada@example.com --password s3cret --role admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.ValidRole(in.Role) {
				return fmt.Errorf("unknown role %q", in.Role)
			}

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}

			client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
			if err != nil {
				return err
			}
			defer mongodb.Disconnect(client, 5*time.Second)

			users := mongodb.NewUserRepository(db)
			if err := users.EnsureIndexes(ctx); err != nil {
				return err
			}

			identity := service.NewIdentityService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.APITokenTTL)
			user, err := identity.Register(ctx, in)
			if errors.Is(err, domain.ErrUserExists) {
				return fmt.Errorf("an account with email %s already exists", in.Email)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) with role %s\n", user.Email, user.ID, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&in.Role, "role", domain.RoleStudent, "Role: student, instructor or admin")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "Display name")
	cmd.Flags().StringVar(&in.Username, "username", "", "Username (defaults to the email)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
