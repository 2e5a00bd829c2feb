// auth.go implements the "ragline login", "register" and "logout" commands.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and store the session token",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	RunE:  runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and clear the stored token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func runLogin(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	user, err := svcs.session.Login(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (balance $%s)\n", user.Username, user.Balance.StringFixed(2))
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	user, err := svcs.session.Register(cmd.Context(), args[0], args[1], password)
	if err != nil {
		return err
	}

	fmt.Printf("Account created; logged in as %s\n", user.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	if err := svcs.session.Bootstrap(cmd.Context()); err != nil {
		return err
	}
	svcs.session.Logout()
	fmt.Println("Logged out")
	return nil
}

// readPassword prompts on stdin without echo. Falls back to a plain line
// read when stdin is not a terminal (piped input in scripts).
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return string(data), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimSpace(line), nil
}
