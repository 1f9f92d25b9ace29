package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwttoken "navbat/internal/jwt_token"
	"navbat/internal/platform/config"
	redisclient "navbat/internal/platform/redis"
	"navbat/internal/revocation"
	"navbat/pkg/domain"
)

func newTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint or revoke admin bearer tokens",
	}
	cmd.AddCommand(newMintCommand())
	cmd.AddCommand(newRevokeCommand())
	return cmd
}

func newMintCommand() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print a signed token for a subject and role",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			tok, err := svc.GenerateAccessToken(subject, parsed, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "operator identifier placed in the sub claim")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "ADMIN, OPERATOR or VIEWER")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newRevokeCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Add a token's jti to the Redis revocation list until it expires",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
			claims, err := svc.ValidateToken(token)
			if err != nil {
				return fmt.Errorf("token not accepted: %w", err)
			}
			if claims.ID == "" || claims.ExpiresAt == nil {
				return errors.New("token carries no jti or expiry")
			}

			rdb, err := redisclient.New(cmd.Context(), cfg.Redis)
			if err != nil {
				return err
			}
			if rdb == nil {
				return errors.New("REDIS_URL is required to revoke tokens")
			}
			defer rdb.Close()

			ttl := time.Until(claims.ExpiresAt.Time)
			if err := revocation.NewRedisTRL(rdb.Client).Revoke(cmd.Context(), claims.ID, ttl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s until %s\n", claims.ID, claims.ExpiresAt.Time.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "the bearer token to revoke")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}
