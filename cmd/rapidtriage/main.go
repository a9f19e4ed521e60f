package main

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/app"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/config"
	"github.com/YarlisAISolutions/rapidtriageME-sub003/internal/screenshot"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Store", "Sweep").
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cmd.Context(), cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "rapidtriage",
	Short: "Screenshot storage for debugging and triage sessions",
}

// config command

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		host, _ := cmd.Flags().GetString("host")
		cfg := config.NewConfig(host, defaults["base_dir"])

		fmt.Print("Signing secret (leave empty to disable signed URLs): ")
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading signing secret: %w", err)
		}
		cfg.SigningSecret = string(secret)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Screenshot host: %s\n", cfg.ScreenshotHost)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Screenshot host: %s\n", cfg.ScreenshotHost)
		fmt.Printf("Object store:    %s\n", cfg.ObjectStore.Type)
		fmt.Printf("KV store:        %s\n", cfg.KV.Type)
		fmt.Printf("Log Dir:         %s\n", cfg.LogDir)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Verify the configured backends are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ValidateSetup")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ValidateSetup(cmd.Context()); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Backends reachable")
		return nil
	},
}

// store command

var storeCmd = &cobra.Command{
	Use:   "store <file>",
	Short: "Store a screenshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Store")
		if err != nil {
			return err
		}
		defer a.Close()

		p := app.StoreParams{FilePath: args[0]}
		p.URL, _ = cmd.Flags().GetString("url")
		p.Title, _ = cmd.Flags().GetString("title")
		p.TenantType, _ = cmd.Flags().GetString("tenant-type")
		p.TenantID, _ = cmd.Flags().GetString("tenant-id")
		p.Plan, _ = cmd.Flags().GetString("plan")
		p.Project, _ = cmd.Flags().GetString("project")
		p.SessionID, _ = cmd.Flags().GetString("session")
		p.Tags, _ = cmd.Flags().GetStringSlice("tag")

		resp, err := a.StoreScreenshot(cmd.Context(), p)
		if err != nil {
			return err
		}

		fmt.Printf("ID:      %s\n", resp.ID)
		fmt.Printf("Path:    %s\n", resp.Path)
		fmt.Printf("URL:     %s\n", resp.URL)
		fmt.Printf("Expires: %s\n", resp.Expires.Format(time.RFC3339))
		return nil
	},
}

// get command

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a screenshot record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Get")
		if err != nil {
			return err
		}
		defer a.Close()

		out, _ := cmd.Flags().GetString("out")
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()

			found, err := a.DownloadScreenshot(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("screenshot not found: %s", args[0])
			}
			fmt.Printf("Saved to %s\n", out)
			return nil
		}

		resp, err := a.GetScreenshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if resp == nil {
			return fmt.Errorf("screenshot not found: %s", args[0])
		}

		meta := resp.Metadata
		fmt.Printf("ID:       %s\n", meta.ID)
		fmt.Printf("Tenant:   %s:%s\n", meta.Tenant.Type, meta.Tenant.Identifier)
		fmt.Printf("Project:  %s\n", meta.Project.Name)
		fmt.Printf("Session:  %s\n", meta.Session.ID)
		fmt.Printf("Page:     %s (%s)\n", meta.Page.Title, meta.Page.URL)
		fmt.Printf("Captured: %s\n", meta.CapturedAt.Format(time.RFC3339))
		fmt.Printf("Expires:  %s\n", meta.ExpiresAt.Format(time.RFC3339))
		fmt.Printf("Views:    %d\n", meta.Analytics.Views)
		fmt.Printf("URL:      %s\n", resp.URL)
		return nil
	},
}

// list command

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List screenshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "List")
		if err != nil {
			return err
		}
		defer a.Close()

		var req screenshot.ListRequest
		tenantType, _ := cmd.Flags().GetString("tenant-type")
		req.TenantType = screenshot.TenantType(tenantType)
		req.TenantID, _ = cmd.Flags().GetString("tenant-id")
		req.Domain, _ = cmd.Flags().GetString("domain")
		req.Project, _ = cmd.Flags().GetString("project")
		req.Session, _ = cmd.Flags().GetString("session")
		req.Limit, _ = cmd.Flags().GetInt("limit")
		req.Cursor, _ = cmd.Flags().GetString("cursor")

		result, err := a.ListScreenshots(cmd.Context(), req)
		if err != nil {
			return err
		}

		for _, meta := range result.Screenshots {
			fmt.Printf("%s  %s  %s:%s  %s\n",
				meta.ID,
				meta.CapturedAt.Format("2006-01-02 15:04:05"),
				meta.Tenant.Type, meta.Tenant.Identifier,
				meta.Page.URL)
		}
		if result.HasMore {
			fmt.Printf("\nMore results available")
			if result.Cursor != "" {
				fmt.Printf(" (--cursor %s)", result.Cursor)
			}
			fmt.Println()
		}
		return nil
	},
}

// delete command

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a screenshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Delete")
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.DeleteScreenshot(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("screenshot not found: %s", args[0])
		}
		fmt.Printf("Deleted %s\n", args[0])
		return nil
	},
}

// sweep command

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove screenshots past their retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Sweep")
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.SweepExpired(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired screenshot(s)\n", removed)
		return nil
	},
}

// sign command

var signCmd = &cobra.Command{
	Use:   "sign <path>",
	Short: "Generate a signed URL for a stored path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Sign")
		if err != nil {
			return err
		}
		defer a.Close()

		ttlSeconds, _ := cmd.Flags().GetInt("ttl")
		fmt.Println(a.SignURL(args[0], time.Duration(ttlSeconds)*time.Second))
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("host", "screenshots.example.com", "public host screenshots are served from")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configValidateCmd)

	storeCmd.Flags().String("url", "", "URL of the captured page (required)")
	storeCmd.Flags().String("title", "", "title of the captured page")
	storeCmd.Flags().String("tenant-type", "", "tenant type (public, user, team, enterprise, test)")
	storeCmd.Flags().String("tenant-id", "", "tenant identifier")
	storeCmd.Flags().String("plan", "", "tenant plan")
	storeCmd.Flags().String("project", "", "project name")
	storeCmd.Flags().String("session", "", "session id")
	storeCmd.Flags().StringSlice("tag", nil, "project tag (repeatable)")
	storeCmd.MarkFlagRequired("url")

	getCmd.Flags().String("out", "", "write the image to this file instead of printing the record")

	listCmd.Flags().String("tenant-type", "", "tenant type filter")
	listCmd.Flags().String("tenant-id", "", "tenant identifier filter")
	listCmd.Flags().String("domain", "", "hostname substring filter")
	listCmd.Flags().String("project", "", "project name filter")
	listCmd.Flags().String("session", "", "session id filter")
	listCmd.Flags().Int("limit", 0, "maximum results per page")
	listCmd.Flags().String("cursor", "", "resume listing from this cursor")

	signCmd.Flags().Int("ttl", 3600, "signed URL lifetime in seconds")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(signCmd)
}
