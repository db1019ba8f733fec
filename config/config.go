// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath     = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers   = []string{"sqlite", "postgres"}
)

// Config is built once by Setup and passed by reference into every
// component that needs it. Nothing reads viper after startup.
type Config struct {
	LogLevel string

	Host struct {
		Port       int
		Domain     string
		SSLEnabled bool
	}

	DB struct {
		Driver string
		DSN    string
	}

	JWTSecret string

	Mail struct {
		Enabled  bool
		Host     string
		Port     int
		Sender   string
		Password string
	}

	OTP struct {
		Validity      time.Duration
		SweepInterval time.Duration
		SweepChance   float64
	}

	Paths struct {
		Uploads string
		Audio   string
	}

	TTS struct {
		KeepCount int
		MaxChars  int
	}

	STT struct {
		RecognizerURL string
		RecognizerKey string
		FFmpegPath    string
	}

	OCR struct {
		TesseractPath string
	}

	MaxUploadSize int64
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() (*Config, error) {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.ssl_enabled", "host_ssl_enabled")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("security.jwt_secret", "security_jwt_secret")

	v.BindEnv("mail.enabled", "mail_enabled")
	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.sender", "mail_sender_address")
	v.BindEnv("mail.password", "mail_password")

	v.BindEnv("otp.validity", "otp_validity")
	v.BindEnv("otp.sweep_interval", "otp_sweep_interval")
	v.BindEnv("otp.sweep_chance", "otp_sweep_chance")

	v.BindEnv("paths.uploads", "paths_uploads")
	v.BindEnv("paths.audio", "paths_audio")

	v.BindEnv("tts.keep_count", "tts_keep_count")
	v.BindEnv("tts.max_chars", "tts_max_chars")

	v.BindEnv("stt.recognizer_url", "stt_recognizer_url")
	v.BindEnv("stt.recognizer_key", "stt_recognizer_key")
	v.BindEnv("stt.ffmpeg_path", "stt_ffmpeg_path")

	v.BindEnv("ocr.tesseract_path", "ocr_tesseract_path")

	v.BindEnv("upload.max_size", "upload_max_size")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.ssl_enabled", false)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("mail.enabled", true)
	v.SetDefault("mail.port", 587)

	v.SetDefault("otp.validity", "10m")
	v.SetDefault("otp.sweep_interval", "15m")
	v.SetDefault("otp.sweep_chance", 0.01)

	v.SetDefault("paths.uploads", "static/uploads")
	v.SetDefault("paths.audio", "static/audio")

	v.SetDefault("tts.keep_count", 20)
	v.SetDefault("tts.max_chars", 5000)

	v.SetDefault("stt.recognizer_url", "http://www.google.com/speech-api/v2/recognize")
	v.SetDefault("stt.ffmpeg_path", "ffmpeg")

	v.SetDefault("ocr.tesseract_path", "tesseract")

	v.SetDefault("upload.max_size", 16)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return nil, errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return nil, errors.New("invalid port provided")
	}

	if !slices.Contains(validDrivers, v.GetString("db.driver")) {
		return nil, errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return nil, errors.New("database DSN can't be empty")
	}

	if v.GetString("security.jwt_secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return nil, errors.New("mail host can't be empty")
		}
		if v.GetString("mail.sender") == "" {
			return nil, errors.New("mail sender address can't be empty")
		}
	}

	if v.GetInt("tts.keep_count") <= 0 {
		return nil, errors.New("tts.keep_count must be bigger than 0")
	}

	if v.GetInt("tts.max_chars") <= 0 {
		return nil, errors.New("tts.max_chars must be bigger than 0")
	}

	if v.GetFloat64("otp.sweep_chance") < 0 || v.GetFloat64("otp.sweep_chance") > 1 {
		return nil, errors.New("otp.sweep_chance must be between 0 and 1")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return nil, errors.New("max upload size must be bigger than 0")
	}

	c := &Config{}
	c.LogLevel = v.GetString("app.log_level")
	c.Host.Port = v.GetInt("host.port")
	c.Host.Domain = v.GetString("host.domain")
	c.Host.SSLEnabled = v.GetBool("host.ssl_enabled")
	c.DB.Driver = v.GetString("db.driver")
	c.DB.DSN = v.GetString("db.dsn")
	c.JWTSecret = v.GetString("security.jwt_secret")
	c.Mail.Enabled = v.GetBool("mail.enabled")
	c.Mail.Host = v.GetString("mail.host")
	c.Mail.Port = v.GetInt("mail.port")
	c.Mail.Sender = v.GetString("mail.sender")
	c.Mail.Password = v.GetString("mail.password")
	c.OTP.Validity = v.GetDuration("otp.validity")
	c.OTP.SweepInterval = v.GetDuration("otp.sweep_interval")
	c.OTP.SweepChance = v.GetFloat64("otp.sweep_chance")
	c.Paths.Uploads = v.GetString("paths.uploads")
	c.Paths.Audio = v.GetString("paths.audio")
	c.TTS.KeepCount = v.GetInt("tts.keep_count")
	c.TTS.MaxChars = v.GetInt("tts.max_chars")
	c.STT.RecognizerURL = v.GetString("stt.recognizer_url")
	c.STT.RecognizerKey = v.GetString("stt.recognizer_key")
	c.STT.FFmpegPath = v.GetString("stt.ffmpeg_path")
	c.OCR.TesseractPath = v.GetString("ocr.tesseract_path")
	c.MaxUploadSize = v.GetInt64("upload.max_size") << 20

	if c.OTP.Validity <= 0 {
		return nil, errors.New("otp.validity must be bigger than 0")
	}

	for _, dir := range []string{c.Paths.Uploads, c.Paths.Audio} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %v, %w", dir, err)
		}
	}

	return c, nil
}
