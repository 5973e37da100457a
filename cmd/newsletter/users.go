package main

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/deppfellow/newsletter/internal/database"
	"github.com/deppfellow/newsletter/internal/repository"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/spf13/cobra"
)

// NewUserPasswordEnv supplies the password for "users add" without it
// showing up in shell history or the process list.
const NewUserPasswordEnv = "NEWSLETTER_NEW_USER_PASSWORD"

var errNoPassword = errors.New("no password given: pipe it with --password-stdin or set " + NewUserPasswordEnv)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage publisher accounts",
}

var (
	userPassword      string
	userPasswordStdin bool
)

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a publisher allowed to send newsletters",
	Example: `  printf '%s' "$PASSWORD" | newsletter users add alice --password-stdin
  NEWSLETTER_NEW_USER_PASSWORD=... newsletter users add alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(userPassword, userPasswordStdin, cmd.InOrStdin(), os.Getenv)
		if err != nil {
			return err
		}
		if userPassword != "" {
			log.Warn().Msg("--password is visible in shell history and ps output, prefer --password-stdin")
		}

		db, err := database.New(cfg, &log, nil)
		if err != nil {
			return err
		}
		defer db.Close()

		auth := service.NewAuthService(repository.NewUserRepository(db.Pool), nil)

		user, err := auth.CreateUser(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		log.Info().
			Str("user_id", user.ID.String()).
			Str("username", user.Username).
			Msg("publisher created")
		return nil
	},
}

// readPassword resolves the new account's password. Stdin wins when asked
// for, then the flag, then the environment.
func readPassword(flagValue string, fromStdin bool, stdin io.Reader, getenv func(string) string) (string, error) {
	if fromStdin {
		if flagValue != "" {
			return "", errors.New("--password and --password-stdin are mutually exclusive")
		}
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		password := strings.TrimRight(line, "\r\n")
		if password == "" {
			return "", errNoPassword
		}
		return password, nil
	}

	if flagValue != "" {
		return flagValue, nil
	}

	if password := getenv(NewUserPasswordEnv); password != "" {
		return password, nil
	}

	return "", errNoPassword
}

func init() {
	usersAddCmd.Flags().StringVar(&userPassword, "password", "", "password for the new account (discouraged, visible in ps)")
	usersAddCmd.Flags().BoolVar(&userPasswordStdin, "password-stdin", false, "read the password from the first line of stdin")

	usersCmd.AddCommand(usersAddCmd)
}
