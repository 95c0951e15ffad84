package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/OverStackedLab/mytimeblock.com/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage authentication with the sync server. Logging in switches the event backend to cloud sync.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the sync server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and switch back to local storage",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the sync server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active backend and account",
	RunE:  runStatus,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)
}

type authResult struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// postAuth calls a public auth endpoint and decodes the session
func postAuth(serverURL, path string, payload map[string]string) (authResult, error) {
	body, _ := json.Marshal(payload)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return authResult{}, fmt.Errorf("failed to connect: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return authResult{}, fmt.Errorf("server error: %s", string(respBody))
	}

	var result authResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return authResult{}, err
	}
	return result, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Println("Logging in...")
	result, err := postAuth(cfg.ServerURL, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return err
	}

	cfg.Token = result.Token
	cfg.UserID = result.UserID
	cfg.Backend = config.BackendCloud
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println("✓ Logged in; events now sync to the cloud.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Print("Password: ")
	passwordBytes, _ := term.ReadPassword(int(syscall.Stdin))
	password := string(passwordBytes)
	fmt.Println()

	fmt.Print("Confirm Password: ")
	confirmBytes, _ := term.ReadPassword(int(syscall.Stdin))
	confirm := string(confirmBytes)
	fmt.Println()

	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("Creating account...")
	result, err := postAuth(cfg.ServerURL, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}

	cfg.Token = result.Token
	cfg.UserID = result.UserID
	cfg.Backend = config.BackendCloud
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println("✓ Account created; events now sync to the cloud.")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Token == "" {
		fmt.Println("Not logged in.")
		return nil
	}

	cfg.Token = ""
	cfg.UserID = ""
	cfg.Backend = config.BackendLocal
	if err := cfg.Save(); err != nil {
		return err
	}

	fmt.Println("✓ Logged out; events stay in local storage.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("Backend: %s\n", cfg.Backend)
	if cfg.Backend == config.BackendCloud {
		fmt.Printf("Server:  %s\n", cfg.ServerURL)
		fmt.Printf("User:    %s\n", cfg.UserID)
	}
	return nil
}
