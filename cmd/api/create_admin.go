package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository/postgres"
	userService "github.com/jwalitptl/hospital-api/internal/service/user"
	"github.com/jwalitptl/hospital-api/pkg/security"
	"github.com/jwalitptl/hospital-api/pkg/validator"
)

func newCreateAdminCmd() *cobra.Command {
	req := model.CreateUserRequest{Role: model.RoleAdmin}

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validator.New().Validate(&req); err != nil {
				return err
			}

			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := postgres.NewDB(cmd.Context(), cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			svc := userService.NewService(postgres.NewUserRepository(db), security.NewBcryptHasher(0))
			user, err := svc.CreateUser(cmd.Context(), &req)
			if err != nil {
				return err
			}

			log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("admin created")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password")
	cmd.Flags().StringVar(&req.Name, "name", "", "admin display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
