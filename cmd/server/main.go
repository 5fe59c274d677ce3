package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kareemeredaze/maitre-seo/internal/api"
	"github.com/kareemeredaze/maitre-seo/internal/identity"
	"github.com/kareemeredaze/maitre-seo/internal/storage"
	"github.com/kareemeredaze/maitre-seo/internal/web"
)

const (
	commandUseName              = "server"
	commandShortDescription     = "Run the MaitreSEO portal"
	commandLongDescription      = "Launch the MaitreSEO marketing site and client dashboard HTTP server"
	missingConfigurationMessage = "missing required configuration"
	loggerCreationErrorMessage  = "logger"
	logEventListening           = "listening"
	logFieldAddress             = "addr"

	flagNameApplicationAddress     = "app-addr"
	flagNameDatabaseDriver         = "db-driver"
	flagNameDatabaseDataSourceName = "db-dsn"
	flagNameIdentityBaseURL        = "identity-base-url"
	flagNameIdentityAPIKey         = "identity-api-key"
	flagNameIdentityJWTSecret      = "identity-jwt-secret"
	flagNameSessionSecret          = "session-secret"
	flagNamePublicBaseURL          = "public-base-url"

	flagUsageApplicationAddress     = "address for the HTTP server to listen on"
	flagUsageDatabaseDriver         = "database driver name (sqlite or postgres)"
	flagUsageDatabaseDataSourceName = "database connection string"
	flagUsageIdentityBaseURL        = "base URL of the hosted identity service"
	flagUsageIdentityAPIKey         = "public API key for the hosted identity service"
	flagUsageIdentityJWTSecret      = "HMAC secret used to verify identity access tokens"
	flagUsageSessionSecret          = "secret used to sign session cookies"
	flagUsagePublicBaseURL          = "externally reachable base URL of this portal"

	environmentKeyApplicationAddress = "APP_ADDR"
	environmentKeyDatabaseDriver     = "DB_DRIVER"
	environmentKeyDatabaseDataSource = "DB_DSN"
	environmentKeyIdentityBaseURL    = "IDENTITY_BASE_URL"
	environmentKeyIdentityAPIKey     = "IDENTITY_API_KEY"
	environmentKeyIdentityJWTSecret  = "IDENTITY_JWT_SECRET"
	environmentKeySessionSecret      = "SESSION_SECRET"
	environmentKeyPublicBaseURL      = "PUBLIC_BASE_URL"

	defaultApplicationAddress = ":8080"
	defaultDatabaseDriver     = storage.DriverNameSQLite
	defaultPublicBaseURL      = "http://localhost:8080"

	loggerContextOpenDatabase     = "open_db"
	loggerContextAutoMigrate      = "migrate"
	loggerContextServer           = "server"
	readHeaderTimeoutSeconds      = 5
	unexpectedArgumentsMessage    = "unexpected command arguments"
	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"
)

// ServerConfig captures configuration needed to run the portal.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	IdentityBaseURL        string
	IdentityAPIKey         string
	IdentityJWTSecret      string
	SessionSecret          string
	PublicBaseURL          string
}

// DatabaseOpener opens a database connection for the given configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the portal server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

type configurationBinding struct {
	environmentKey string
	flagName       string
	defaultValue   string
	flagUsage      string
	required       bool
}

func (application *ServerApplication) configurationBindings() []configurationBinding {
	return []configurationBinding{
		{environmentKey: environmentKeyApplicationAddress, flagName: flagNameApplicationAddress, defaultValue: defaultApplicationAddress, flagUsage: flagUsageApplicationAddress},
		{environmentKey: environmentKeyDatabaseDriver, flagName: flagNameDatabaseDriver, defaultValue: defaultDatabaseDriver, flagUsage: flagUsageDatabaseDriver},
		{environmentKey: environmentKeyDatabaseDataSource, flagName: flagNameDatabaseDataSourceName, flagUsage: flagUsageDatabaseDataSourceName, required: true},
		{environmentKey: environmentKeyIdentityBaseURL, flagName: flagNameIdentityBaseURL, flagUsage: flagUsageIdentityBaseURL, required: true},
		{environmentKey: environmentKeyIdentityAPIKey, flagName: flagNameIdentityAPIKey, flagUsage: flagUsageIdentityAPIKey},
		{environmentKey: environmentKeyIdentityJWTSecret, flagName: flagNameIdentityJWTSecret, flagUsage: flagUsageIdentityJWTSecret, required: true},
		{environmentKey: environmentKeySessionSecret, flagName: flagNameSessionSecret, flagUsage: flagUsageSessionSecret, required: true},
		{environmentKey: environmentKeyPublicBaseURL, flagName: flagNamePublicBaseURL, defaultValue: defaultPublicBaseURL, flagUsage: flagUsagePublicBaseURL},
	}
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	application.configurationLoader.AutomaticEnv()

	commandFlags := command.Flags()
	for _, binding := range application.configurationBindings() {
		application.configurationLoader.SetDefault(binding.environmentKey, binding.defaultValue)
		commandFlags.String(binding.flagName, binding.defaultValue, binding.flagUsage)

		if bindErr := application.bindFlag(commandFlags, binding.environmentKey, binding.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, binding.environmentKey, binding.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadConfiguration() ServerConfig {
	return ServerConfig{
		ApplicationAddress:     application.configurationLoader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:     strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName: strings.TrimSpace(application.configurationLoader.GetString(environmentKeyDatabaseDataSource)),
		IdentityBaseURL:        strings.TrimSpace(application.configurationLoader.GetString(environmentKeyIdentityBaseURL)),
		IdentityAPIKey:         strings.TrimSpace(application.configurationLoader.GetString(environmentKeyIdentityAPIKey)),
		IdentityJWTSecret:      strings.TrimSpace(application.configurationLoader.GetString(environmentKeyIdentityJWTSecret)),
		SessionSecret:          strings.TrimSpace(application.configurationLoader.GetString(environmentKeySessionSecret)),
		PublicBaseURL:          strings.TrimSpace(application.configurationLoader.GetString(environmentKeyPublicBaseURL)),
	}
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	requiredValues := map[string]string{
		flagNameDatabaseDataSourceName: configuration.DatabaseDataSourceName,
		flagNameIdentityBaseURL:        configuration.IdentityBaseURL,
		flagNameIdentityJWTSecret:      configuration.IdentityJWTSecret,
		flagNameSessionSecret:          configuration.SessionSecret,
	}

	var missingParameters []string
	for _, binding := range application.configurationBindings() {
		value, tracked := requiredValues[binding.flagName]
		if tracked && binding.required && value == "" {
			missingParameters = append(missingParameters, binding.flagName)
		}
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig := application.loadConfiguration()
	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	router, routerErr := buildRouter(database, logger, serverConfig)
	if routerErr != nil {
		return routerErr
	}

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func buildRouter(database *gorm.DB, logger *zap.Logger, serverConfig ServerConfig) (*gin.Engine, error) {
	tokenVerifier, verifierErr := identity.NewTokenVerifier(serverConfig.IdentityJWTSecret)
	if verifierErr != nil {
		return nil, verifierErr
	}

	sessionManager, sessionErr := api.NewSessionManager(api.SessionConfig{
		Secret:       serverConfig.SessionSecret,
		SecureCookie: strings.HasPrefix(serverConfig.PublicBaseURL, "https://"),
	})
	if sessionErr != nil {
		return nil, sessionErr
	}

	identityProvider := identity.NewClient(identity.ClientConfig{
		BaseURL: serverConfig.IdentityBaseURL,
		APIKey:  serverConfig.IdentityAPIKey,
	})

	authManager := api.NewAuthManager(sessionManager, tokenVerifier, logger)
	activityRecorder := api.NewActivityRecorder(database, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(api.RequestLogger(logger))

	registerFrontendRoutes(
		router,
		authManager,
		web.NewPageHandlers(database, logger, authManager),
	)
	registerBackendRoutes(
		router,
		authManager,
		api.NewAuthHandlers(database, identityProvider, sessionManager, activityRecorder, logger, serverConfig.PublicBaseURL),
		api.NewProfileHandlers(database, logger, activityRecorder),
		api.NewCampaignHandlers(database, logger),
		api.NewInvoiceHandlers(database, logger),
		api.NewActivityHandlers(database, logger),
		api.NewSecurityHandlers(identityProvider, logger, activityRecorder),
		serverConfig.PublicBaseURL,
	)

	return router, nil
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
