package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialsFromFlags()
		if err != nil {
			return err
		}

		identity, err := application.Session.SignIn(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		fmt.Printf("Signed in as %s\n", identity.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, password, err := credentialsFromFlags()
		if err != nil {
			return err
		}

		identity, err := application.Session.SignUp(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		fmt.Printf("Account created, signed in as %s\n", identity.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard session state",
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Session.CurrentIdentity() == nil {
			fmt.Println("Not signed in")
			return nil
		}
		application.Session.SignOut()
		fmt.Println("Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := application.Session.CurrentIdentity()
		if identity == nil {
			fmt.Println("Not signed in")
			return nil
		}
		fmt.Printf("%s (%s)\n", identity.Email, identity.UID)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, signupCmd} {
		cmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
		cmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	}
}

func credentialsFromFlags() (string, string, error) {
	email := strings.TrimSpace(loginEmail)
	if email == "" {
		return "", "", fmt.Errorf("--email is required")
	}

	password := loginPassword
	if password == "" {
		fmt.Print("Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", "", fmt.Errorf("password must not be empty")
	}

	return email, password, nil
}
