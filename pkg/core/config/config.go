//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package config provides configuration management for snowsync using
// [Viper] for flexible configuration sources.
//
// Configuration can be provided via:
//   - YAML configuration files
//   - Environment variables with the SNOWSYNC_ prefix
//   - CLI flags (pushed into the configuration by the sync subcommand)
//
// # Configuration File
//
// By default, snowsync looks for snowsync-config.yaml in the current
// directory. Override the location using environment variables:
//
//	SNOWSYNC_CONFIG_PATH=/etc/snowsync
//	SNOWSYNC_CONFIG_FILENAME=production-config
//
// Example configuration file:
//
//	log:
//	  level: ".:info"
//	snowflake:
//	  account: xy12345
//	  user: SNOWSYNC
//	  role: SECURITYADMIN
//	  region: us-east-1
//	ldap:
//	  url: ldaps://dc01.example.com
//	  binddn: CN=snowsync,OU=Service Accounts,DC=example,DC=com
//	  ou: OU=Snowflake,DC=example,DC=com
//	  loginattribute: mail
//	sync:
//	  roleprefix: snowflake-role-
//	  stripprefix: true
//
// # Environment Variables
//
// All keys can be set via environment variables with the SNOWSYNC_ prefix;
// dots become underscores. The warehouse credential is deliberately not a
// CLI flag and must be supplied via SNOWSYNC_SNOWFLAKE_PASSWORD.
//
// [Viper]: https://github.com/spf13/viper
package config

import (
	"errors"
	"os"
	"strings"
	"sync"

	"github.com/manetu/snowsync/internal/logging"
	"github.com/spf13/viper"
)

// Environment variable and default path constants for configuration loading.
const (
	// EnvVarPrefix is the prefix for all snowsync environment variables.
	// For example, the key "log.level" becomes SNOWSYNC_LOG_LEVEL.
	EnvVarPrefix string = "SNOWSYNC"

	// ConfigPathEnv is the environment variable that specifies the
	// directory containing the configuration file.
	ConfigPathEnv string = "SNOWSYNC_CONFIG_PATH"

	// ConfigFileNameEnv is the environment variable that specifies the
	// configuration file name (without extension).
	ConfigFileNameEnv string = "SNOWSYNC_CONFIG_FILENAME"

	// ConfigDefaultPath is the default directory to search for config files.
	ConfigDefaultPath string = "."

	// ConfigDefaultFilename is the default configuration file name (without extension).
	ConfigDefaultFilename string = "snowsync-config"
)

// Configuration key constants for use with [VConfig].
const (
	logLevel string = "log.level"

	// MockEnabled when set to true causes the engine to run against
	// fixture-backed collaborators regardless of any configured directory
	// or warehouse endpoints. Useful for unit tests and demo runs.
	//
	// Set via environment: SNOWSYNC_MOCK_ENABLED=true
	MockEnabled string = "mock.enabled"

	// SnowflakeAccount is the warehouse account identifier.
	SnowflakeAccount string = "snowflake.account"
	// SnowflakeUser is the warehouse user snowsync connects as.
	SnowflakeUser string = "snowflake.user"
	// SnowflakeRole is the warehouse role assumed for the session.
	SnowflakeRole string = "snowflake.role"
	// SnowflakeRegion is the warehouse deployment region.
	SnowflakeRegion string = "snowflake.region"
	// SnowflakePassword is the warehouse credential. Environment only;
	// validated present before any collaborator call.
	SnowflakePassword string = "snowflake.password"

	// LdapURL is the directory endpoint, e.g. ldaps://dc01.example.com.
	LdapURL string = "ldap.url"
	// LdapBindDN is the DN snowsync binds as.
	LdapBindDN string = "ldap.binddn"
	// LdapPassword is the directory bind credential. Environment only.
	LdapPassword string = "ldap.password"
	// LdapOU is the organizational unit scanned for security groups.
	LdapOU string = "ldap.ou"
	// LoginAttribute is the per-account attribute holding the warehouse
	// login name.
	//
	// Default: "mail"
	LoginAttribute string = "ldap.loginattribute"

	// CreateMissingUsers controls whether users present in the directory
	// but absent from the warehouse are created. When false, such users
	// abort the run before any mutation.
	//
	// Default: true
	CreateMissingUsers string = "sync.createmissingusers"

	// DisableRemovedUsers controls whether enabled federated users no
	// longer present in any directory group are disabled.
	//
	// Default: false
	DisableRemovedUsers string = "sync.disableremovedusers"

	// RolePrefix restricts the managed group set to groups whose name
	// starts with the prefix. Empty means all groups under the OU.
	RolePrefix string = "sync.roleprefix"

	// StripPrefix when true removes the role prefix from derived role
	// names.
	//
	// Default: false
	StripPrefix string = "sync.stripprefix"

	// DryRun renders the plan without applying it.
	//
	// Default: false
	DryRun string = "sync.dryrun"

	// Output selects the dry-run rendering format: "sql" or "yaml".
	//
	// Default: "sql"
	Output string = "sync.output"
)

var (
	once     sync.Once
	loadOnce sync.Once
	loadErr  error

	// VConfig is the global Viper configuration instance for snowsync.
	//
	// VConfig is initialized automatically when [Load] or [Init] is
	// called. Use the key constants above to access specific settings.
	VConfig *viper.Viper
	logger  = logging.GetLogger("snowsync.config")
)

// Init initializes the configuration system without loading config files.
//
// This function is safe to call multiple times; subsequent calls are no-ops.
// Call Init explicitly only if you need to set Viper values before [Load]
// reads the configuration file.
func Init() {
	once.Do(doInitialize)
}

func getConfigPath() string {
	if configPath, ok := os.LookupEnv(ConfigPathEnv); ok {
		return configPath
	}
	return ConfigDefaultPath
}

func getConfigFileName() string {
	if configName, ok := os.LookupEnv(ConfigFileNameEnv); ok {
		return configName
	}
	return ConfigDefaultFilename
}

func doInitialize() {
	VConfig = viper.New()

	// config-file loading: default is './snowsync-config.yaml', overridable
	// with $(SNOWSYNC_CONFIG_PATH)/$(SNOWSYNC_CONFIG_FILENAME).yaml
	VConfig.AddConfigPath(getConfigPath())
	VConfig.SetConfigName(getConfigFileName())
	VConfig.SetConfigType("yaml")

	// envvar handling: keys such as 'snowflake.account' become
	// 'SNOWSYNC_SNOWFLAKE_ACCOUNT'
	VConfig.SetEnvPrefix(EnvVarPrefix)
	VConfig.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	VConfig.AutomaticEnv()

	VConfig.SetDefault(logLevel, ".:info")
	VConfig.SetDefault(LoginAttribute, "mail")
	VConfig.SetDefault(CreateMissingUsers, true)
	VConfig.SetDefault(DisableRemovedUsers, false)
	VConfig.SetDefault(StripPrefix, false)
	VConfig.SetDefault(DryRun, false)
	VConfig.SetDefault(Output, "sql")
}

// Load initializes configuration and loads settings from files and
// environment. Missing config files are not an error; the defaults plus
// environment apply. Safe to call concurrently; calls after the first
// successful load are no-ops.
func Load() error {
	loadOnce.Do(func() {
		Init()

		// Early log level update from environment allows debugging the
		// config loading itself.
		if earlyLoglevel := os.Getenv("SNOWSYNC_LOG_LEVEL"); earlyLoglevel != "" {
			if err := logging.UpdateLogLevels(earlyLoglevel); err != nil {
				logger.SysErrorf("Failed updating early log level %s: %+v", earlyLoglevel, err)
				loadErr = err
				return
			}
		}

		logger.SysDebugf("Loading configuration from %s/%s.yaml", getConfigPath(), getConfigFileName())
		if err := VConfig.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				logger.SysWarnf("error reading config; using defaults: %+v", err)
			}
			logger.SysDebugf("No config file found at %s/%s.yaml", getConfigPath(), getConfigFileName())
		}

		loglevel := VConfig.GetString(logLevel)
		if err := logging.UpdateLogLevels(loglevel); err != nil {
			logger.SysErrorf("Failed updating log level %s: %+v", loglevel, err)
			loadErr = err
			return
		}

		if logger.IsDebugEnabled() {
			VConfig.DebugTo(logger.Out())
		}
	})

	return loadErr
}

// ResetConfig clears all configuration and reinitializes with defaults.
//
// WARNING: This function is intended for testing only. It resets the
// global configuration state, which can cause race conditions in
// concurrent code.
func ResetConfig() {
	VConfig = nil
	once = sync.Once{}
	loadOnce = sync.Once{}
	loadErr = nil
	Init()
	_ = Load()
}
