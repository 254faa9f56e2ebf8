package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"coldcall-sim/backend/internal/features/config/domain"
)

const (
	// DefaultPath is where the app config lives unless --config says otherwise.
	DefaultPath = "config/app_config.json"
	envPrefix   = "COLDCALL"
)

// AppConfigService defines the interface for application configuration management.
type AppConfigService interface {
	LoadAppConfig() (*domain.AppConfig, error)
	SaveAppConfig(config *domain.AppConfig) error
}

// appConfigService is the implementation of AppConfigService.
type appConfigService struct {
	fs         afero.Fs
	configPath string
	log        logrus.FieldLogger
}

// NewAppConfigService creates a new instance of appConfigService.
func NewAppConfigService(fs afero.Fs, configPath string, log logrus.FieldLogger) AppConfigService {
	if configPath == "" {
		configPath = DefaultPath
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &appConfigService{
		fs:         fs,
		configPath: configPath,
		log:        log.WithField("component", "app-config"),
	}
}

// LoadAppConfig merges defaults, the JSON file (if present) and COLDCALL_* environment variables.
func (s *appConfigService) LoadAppConfig() (*domain.AppConfig, error) {
	v := viper.New()
	v.SetFs(s.fs)
	setDefaults(v, domain.Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	exists, err := afero.Exists(s.fs, s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat app config file %s: %w", s.configPath, err)
	}
	if exists {
		v.SetConfigFile(s.configPath)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read app config file %s: %w", s.configPath, err)
		}
		s.log.WithField("path", s.configPath).Debug("app config file loaded")
	} else {
		s.log.WithField("path", s.configPath).Debug("no app config file, using defaults and environment")
	}

	var appConfig domain.AppConfig
	if err := v.Unmarshal(&appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal app config from %s: %w", s.configPath, err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return &appConfig, nil
}

// SaveAppConfig validates the configuration and writes it to the configured JSON file.
func (s *appConfigService) SaveAppConfig(appConfig *domain.AppConfig) error {
	if err := appConfig.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(appConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal app config: %w", err)
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory for %s: %w", s.configPath, err)
	}
	if err := afero.WriteFile(s.fs, s.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write app config to file %s: %w", s.configPath, err)
	}

	s.log.WithField("path", s.configPath).Info("app config saved")
	return nil
}

func setDefaults(v *viper.Viper, d *domain.AppConfig) {
	v.SetDefault("chat_model", d.ChatModel)
	v.SetDefault("analysis_model", d.AnalysisModel)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.min_wait_seconds", d.Retry.MinWaitSeconds)
	v.SetDefault("retry.max_wait_seconds", d.Retry.MaxWaitSeconds)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("log_level", d.LogLevel)
}
