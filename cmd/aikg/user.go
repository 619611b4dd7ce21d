package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  `Register users and verify credentials for conversation ownership.`,
}

var userRegisterCmd = &cobra.Command{
	Use:   "register USERNAME",
	Short: "Register a new user",
	Long: `Register a new user account. The password is prompted for twice and
never echoed.

Examples:
  aikg user register alice`,
	Args: cobra.ExactArgs(1),
	RunE: runUserRegister,
}

var userLoginCmd = &cobra.Command{
	Use:   "login USERNAME",
	Short: "Verify a user's credentials",
	Long: `Check that a username/password pair is valid. Useful for confirming
an account before scripting conversation commands.

Examples:
  aikg user login alice`,
	Args: cobra.ExactArgs(1),
	RunE: runUserLogin,
}

func init() {
	userCmd.AddCommand(userRegisterCmd)
	userCmd.AddCommand(userLoginCmd)
}

func runUserRegister(cmd *cobra.Command, args []string) error {
	username := args[0]

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return internal.WrapError(internal.ExitError, "failed to read password", err)
	}
	confirm, err := promptPassword(cmd, "Confirm password: ")
	if err != nil {
		return internal.WrapError(internal.ExitError, "failed to read password", err)
	}

	if password != confirm {
		return internal.NewCLIError(internal.ExitConfigError, "passwords do not match")
	}
	if password == "" {
		return internal.NewCLIError(internal.ExitConfigError, "password cannot be empty")
	}

	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	created, err := svc.RegisterUser(cmd.Context(), username, password)
	if err != nil {
		return err
	}
	if !created {
		return internal.NewCLIError(internal.ExitAuthError, "user already exists: "+username)
	}

	return internal.NewTextFormatter(cmd.OutOrStdout()).PrintSuccess("User registered: " + username)
}

func runUserLogin(cmd *cobra.Command, args []string) error {
	username := args[0]

	password, err := promptPassword(cmd, "Password: ")
	if err != nil {
		return internal.WrapError(internal.ExitError, "failed to read password", err)
	}

	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	if err := svc.Authenticate(cmd.Context(), username, password); err != nil {
		return err
	}

	return internal.NewTextFormatter(cmd.OutOrStdout()).PrintSuccess("Credentials valid for " + username)
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read for piped input.
func promptPassword(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
