package ctl

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server"
	"github.com/dmitrijs2005/profilekeeper/internal/server/auth"
	"github.com/dmitrijs2005/profilekeeper/internal/server/config"
	"github.com/dmitrijs2005/profilekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/profilekeeper/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newUserCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUserCreateCmd(e))
	cmd.AddCommand(newUserDeleteCmd(e))
	return cmd
}

func (e *env) userService(ctx context.Context, cfg *config.Config, db *sql.DB) (*services.UserService, error) {
	log := logging.NewNop()
	pipeline, err := server.NewAvatarPipeline(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return services.NewUserService(db, e.rm, passwords.NewBcryptHasher(cfg.BcryptCost),
		auth.NewTokenManager([]byte(cfg.SecretKey)), pipeline, cfg.TokenValidityDuration, log), nil
}

// readPassword prompts without echo on a terminal and reads one line
// otherwise.
func (e *env) readPassword() (string, error) {
	if f, ok := e.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(e.stdout, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.stdout)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(e.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newUserCreateCmd(e *env) *cobra.Command {
	var username, email string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create an account; the password is read from the terminal or stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := e.readPassword()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return e.withDB(ctx, func(cfg *config.Config, db *sql.DB) error {
				svc, err := e.userService(ctx, cfg, db)
				if err != nil {
					return err
				}
				res, err := svc.Signup(ctx, username, email, password, false)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.stdout, "created user %q id=%s\n", res.User.UserName, res.User.ID)
				return nil
			})
		},
	}

	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&email, "email", "", "email")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("email")
	return c
}

func newUserDeleteCmd(e *env) *cobra.Command {
	var id string

	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account and its avatar",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return e.withDB(ctx, func(cfg *config.Config, db *sql.DB) error {
				svc, err := e.userService(ctx, cfg, db)
				if err != nil {
					return err
				}
				user, err := svc.DeleteUser(ctx, id, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(e.stdout, "deleted user %q\n", user.UserName)
				return nil
			})
		},
	}

	c.Flags().StringVar(&id, "id", "", "account id")
	_ = c.MarkFlagRequired("id")
	return c
}
