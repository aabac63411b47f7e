package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stoik/emailapi/internal/logging"
	"github.com/stoik/emailapi/services/email-api/internal/server"
	"github.com/stoik/emailapi/services/email-api/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "emailapi [port]",
	Short: "Email REST API",
	Long:  "Serves CRUD endpoints for the Emails table. The optional port argument overrides server.port.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := resolvePort(args)
		if err != nil {
			return err
		}

		logger, err := newLogger()
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Sync(ctx); err != nil {
			return fmt.Errorf("failed to sync schema: %w", err)
		}

		srv := server.New(st, logger)

		errChan := make(chan error, 1)
		go func() {
			errChan <- srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
		}()

		// A supervising process waits for this line on stdout
		select {
		case <-srv.Ready():
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", srv.Addr())
		case err := <-errChan:
			return err
		}

		return <-errChan
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().Int("server.port", 3000, "HTTP port to listen on")
	rootCmd.PersistentFlags().String("database.driver", store.DriverMemory, "Store backend: 'memory', 'postgres' or 'mysql'")
	rootCmd.PersistentFlags().String("database.url", "", "Database connection URL (postgres URL or mysql DSN)")
	rootCmd.PersistentFlags().String("log.level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log.format", "text", "Log format: 'text' or 'json'")

	// Bind flags to viper
	viper.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("server.port"))
	viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("database.driver"))
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database.url"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log.level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log.format"))
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./services/email-api")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// resolvePort prefers the positional port argument over server.port
func resolvePort(args []string) (int, error) {
	if len(args) == 0 {
		return viper.GetInt("server.port"), nil
	}

	port, err := strconv.Atoi(args[0])
	if err != nil || port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", args[0])
	}
	return port, nil
}

func newLogger() (*logrus.Logger, error) {
	return logging.New(viper.GetString("log.level"), viper.GetString("log.format"))
}

func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, viper.GetString("database.driver"), viper.GetString("database.url"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return st, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
