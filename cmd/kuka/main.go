package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose   bool
	workspace string
	username  string
	password  string
	timeout   time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kuka",
	Short: "kukacrm - client registry for Lelé da Kuka sales in Maceió",
	Long: `kukacrm registers prospective and active merchant clients, filters and
exports them, and asks Gemini for sales insight about the client base.

Data lives in .kuka/ inside the workspace. Every command except init
authenticates first with --user/--password (or KUKA_USER/KUKA_PASSWORD).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// initCmd creates the workspace
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize kukacrm in the current workspace",
	Long: `Creates .kuka/ with a default config.yaml, opens the record store and
provisions the bootstrap admin (admin / 123) when no user exists.`,
	RunE: runInit,
}

// loginCmd checks credentials
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials and show the logged-in profile",
	RunE:  runLogin,
}

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Register, list and export clients",
}

var clientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new client",
	Long: `Registers a client. Required: --name, --responsible, --phone, --address
and --document. With --cnpj-lookup the public registry fills razão social,
name, address, neighborhood, city and state before saving.

Example:
  kuka client add --document 12.345.678/0001-90 --cnpj-lookup \
    --responsible Ana --phone "(82) 98888-7777" --lat -9.66 --lng -35.73`,
	RunE: runClientAdd,
}

var clientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients matching the filters",
	RunE:  runClientList,
}

var clientExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export clients matching the filters to CSV (or GeoJSON)",
	RunE:  runClientExport,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show client counters and distributions",
	RunE:  runDashboard,
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage logins (admin only)",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE:  runUserList,
}

var userAddCmd = &cobra.Command{
	Use:   "add [username] [password]",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserAdd,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a user (the main admin cannot be deleted)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserDelete,
}

var cnpjCmd = &cobra.Command{
	Use:   "cnpj [number]",
	Short: "Look up a CNPJ in the public registry",
	Args:  cobra.ExactArgs(1),
	RunE:  runCNPJ,
}

var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Gemini sales insight",
}

var aiStrategyCmd = &cobra.Command{
	Use:   "strategy [question]",
	Short: "Ask the sales strategist a question about the client base",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAIStrategy,
}

var aiNearbyCmd = &cobra.Command{
	Use:   "nearby [query]",
	Short: "Find places near a position with Maps grounding",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAINearby,
}

var aiBriefCmd = &cobra.Command{
	Use:   "brief",
	Short: "One action plan per top neighborhood",
	RunE:  runAIBrief,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&username, "user", "u", "", "Username (or set KUKA_USER env)")
	rootCmd.PersistentFlags().StringVarP(&password, "password", "p", "", "Password (or set KUKA_PASSWORD env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	// Client flags
	addFilterFlags(clientListCmd)
	addFilterFlags(clientExportCmd)
	addClientFlags(clientAddCmd)
	clientExportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default: export.dir from config)")
	clientExportCmd.Flags().BoolVar(&exportGeoJSON, "geojson", false, "Write the GeoJSON map hand-off instead of CSV")

	// AI flags
	aiNearbyCmd.Flags().Float64Var(&nearbyLat, "lat", 0, "Latitude (default: Maceió map center)")
	aiNearbyCmd.Flags().Float64Var(&nearbyLng, "lng", 0, "Longitude (default: Maceió map center)")
	aiBriefCmd.Flags().IntVar(&briefTop, "top", 3, "Number of neighborhoods")

	clientCmd.AddCommand(clientAddCmd, clientListCmd, clientExportCmd)
	userCmd.AddCommand(userListCmd, userAddCmd, userDeleteCmd)
	aiCmd.AddCommand(aiStrategyCmd, aiNearbyCmd, aiBriefCmd)

	// Add commands to root
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(cnpjCmd)
	rootCmd.AddCommand(aiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		os.Exit(1)
	}
}
