// shelterctl 运维命令：迁移表结构、创建后台管理员
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"animal-shelter/internal/bootstrap"
	"animal-shelter/internal/core/cache"
	"animal-shelter/internal/core/config"
	"animal-shelter/internal/core/database"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "shelterctl",
	Short:         "Animal shelter maintenance commands",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE:  runMigrate,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a back-office admin account",
	Long: `Create an admin user that can sign in to /admin/v1.

With --with-2fa a TOTP secret is enrolled and the otpauth:// URL is printed
once; scan it with an authenticator app.`,
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")

	createAdminCmd.Flags().String("email", "", "admin email")
	createAdminCmd.Flags().String("password", "", "admin password (min 8 chars)")
	createAdminCmd.Flags().String("name", "", "display name (defaults to the email local part)")
	createAdminCmd.Flags().Bool("with-2fa", false, "enroll a TOTP second factor")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(migrateCmd, createAdminCmd)
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *zap.Logger, func(), error) {
	cfg, err := config.Read(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log, cleanup := bootstrap.Logger(cfg)
	return cfg, log, cleanup, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, cleanup, err := loadConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := bootstrap.OpenDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migrate done", zap.String("driver", cfg.DB.Driver))
	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, log, cleanup, err := loadConfig()
	if err != nil {
		return err
	}
	defer cleanup()

	db, err := bootstrap.OpenDB(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	// 不需要缓存
	app := bootstrap.Assemble(cfg, log, db, cache.New("", "", 0))
	defer app.Close()

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")
	with2FA, _ := cmd.Flags().GetBool("with-2fa")

	out, err := app.Svc.Auth.CreateAdmin(cmd.Context(), email, password, name, with2FA)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "admin created: id=%s email=%s\n", out.User.ID, out.User.Email)
	if out.OTPAuthURL != "" {
		fmt.Fprintf(w, "otpauth url: %s\n", out.OTPAuthURL)
	}
	return nil
}
