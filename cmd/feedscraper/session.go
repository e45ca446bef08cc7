package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedscraper/pkg/config"
	"feedscraper/pkg/logger"
	"feedscraper/pkg/session"
	"feedscraper/pkg/ui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// Session command flags
	encryptCopy bool
	keyringCopy bool
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the login session",
	Long: `Manage the login session applied to every browser.

The session is a set of cookies exported from a logged-in browser. It is
read from, in order:
  - the FEEDSCRAPER_SESSION_COOKIES variable (a Cookie header)
  - the plain cookie file
  - an encrypted copy (PBKDF2 + AES-GCM)
  - the system keychain

Never share your session files!`,
}

// importCmd represents the session import command
var importCmd = &cobra.Command{
	Use:   "import [cookies.json]",
	Short: "Import a cookie export as the login session",
	Long: `Import cookies exported from a logged-in browser.

The file may be a JSON array of cookie objects or an object with a
"cookies" array. "-" reads the export from standard input. Without a file
you are prompted for a Cookie header, copied from the browser's developer
tools (Network tab > any request > Request Headers > cookie).`,
	Example: `  # Import a cookie export
  feedscraper session import cookies.json

  # Also keep an encrypted copy and a keychain copy
  feedscraper session import cookies.json --encrypt --keyring

  # Paste a Cookie header
  feedscraper session import`,
	Args: cobra.MaximumNArgs(1),
	Run:  runSessionImport,
}

// statusCmd represents the session status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session that would be used",
	Long:  `Show where the session is loaded from and list its cookies with values masked.`,
	Run:   runSessionStatus,
}

// clearCmd represents the session clear command
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every stored copy of the session",
	Run:   runSessionClear,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(importCmd)
	sessionCmd.AddCommand(statusCmd)
	sessionCmd.AddCommand(clearCmd)

	importCmd.Flags().BoolVar(&encryptCopy, "encrypt", false, "also store an encrypted copy")
	importCmd.Flags().BoolVar(&keyringCopy, "keyring", false, "also store a copy in the system keychain")
}

// loadSessionConfig loads configuration for session commands; accounts
// are not required here.
func loadSessionConfig() *config.Config {
	flags := map[string]interface{}{}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(1)
	}
	return cfg
}

// encryptedSessionPath returns the configured encrypted copy, or one next
// to the plain file.
func encryptedSessionPath(cfg *config.Config) string {
	if cfg.Session.EncryptedFile != "" {
		return cfg.Session.EncryptedFile
	}
	return filepath.Join(filepath.Dir(cfg.Session.File), "session.enc")
}

func runSessionImport(cmd *cobra.Command, args []string) {
	cfg := loadSessionConfig()
	log := logger.GetLogger()

	cookies, err := readCookies(cfg, args)
	if err != nil {
		ui.PrintError("Failed to read cookies", err.Error())
		os.Exit(1)
	}
	if len(cookies) == 0 {
		ui.PrintError("No cookies found in the export")
		os.Exit(1)
	}

	stores := []session.Store{session.NewFileStore(cfg.Session.File)}
	if encryptCopy {
		enc, err := session.NewEncryptedFileStore(encryptedSessionPath(cfg), "")
		if err != nil {
			ui.PrintError("Failed to open encrypted store", err.Error())
			os.Exit(1)
		}
		stores = append(stores, enc)
	}
	if keyringCopy {
		kr, err := session.NewKeyringStore()
		if err != nil {
			ui.PrintWarning("System keychain unavailable, skipping", err.Error())
		} else {
			stores = append(stores, kr)
		}
	}

	manager := session.NewManager(log, stores...)
	if err := manager.Save(&session.Bundle{Cookies: cookies}); err != nil {
		ui.PrintError("Failed to store session", err.Error())
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"cookies": len(cookies),
		"stores":  len(stores),
	}).Info("Session imported")

	ui.PrintSuccess(fmt.Sprintf("Imported %d cookie(s)", len(cookies)))
	for _, store := range stores {
		ui.PrintInfo("Stored in", store.Name())
	}
	if encryptCopy && os.Getenv(session.PassphraseEnv) == "" {
		fmt.Printf("\nThe encrypted copy uses a generated passphrase kept next to it.\n")
		fmt.Printf("Set %s to use your own.\n", session.PassphraseEnv)
	}
}

// readCookies reads the export from a file, stdin or an interactive prompt
func readCookies(cfg *config.Config, args []string) ([]session.Cookie, error) {
	if len(args) == 1 {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return nil, err
		}
		return session.ParseCookies(data)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("no cookie file given and standard input is not a terminal")
	}

	fmt.Print("Cookie header (input hidden): ")
	header, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, fmt.Errorf("failed to read cookie header: %w", err)
	}
	return session.ParseCookieHeader(strings.TrimSpace(string(header)), session.CookieDomain(cfg.Browser.BaseURL)), nil
}

func runSessionStatus(cmd *cobra.Command, args []string) {
	cfg := loadSessionConfig()

	manager := session.NewManagerFromConfig(cfg, logger.GetLogger())
	bundle, err := manager.Load()
	if err != nil {
		ui.PrintWarning("No session available", err.Error())
		fmt.Println("\nImport one with 'feedscraper session import cookies.json'")
		os.Exit(1)
	}

	ui.PrintInfo("Source", bundle.Source)
	ui.PrintInfo("Cookies", fmt.Sprintf("%d", len(bundle.Cookies)))
	fmt.Println()

	now := time.Now()
	for _, c := range session.Sanitize(bundle.Normalized()) {
		expiry := "session"
		if c.Expiry > 0 {
			expiry = time.Unix(c.Expiry, 0).UTC().Format(time.RFC3339)
		}
		line := fmt.Sprintf("  %-24s %-16s %-20s %s", c.Name, c.Value, c.Domain, expiry)
		if c.Expired(now) {
			line += " " + ui.Red("(expired)")
		}
		fmt.Println(line)
	}
}

func runSessionClear(cmd *cobra.Command, args []string) {
	cfg := loadSessionConfig()
	manager := session.NewManagerFromConfig(cfg, logger.GetLogger())

	var removed int
	for _, store := range manager.Stores() {
		if err := store.Delete(); err != nil {
			if !errors.Is(err, session.ErrStoreUnavailable) && !errors.Is(err, session.ErrNotFound) {
				ui.PrintWarning("Failed to clear "+store.Name(), err.Error())
			}
			continue
		}
		removed++
		ui.PrintInfo("Cleared", store.Name())
	}

	if removed == 0 {
		ui.PrintWarning("No stored session found")
		return
	}
	ui.PrintSuccess("Session removed")
}
