package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "mailtriage"
)

type Config struct {
	Gmail      *GmailConfig      `mapstructure:"gmail"`
	Gemini     *GeminiConfig     `mapstructure:"gemini"`
	HF         *HFConfig         `mapstructure:"hf"`
	Redis      *RedisConfig      `mapstructure:"redis"`
	Extraction *ExtractionConfig `mapstructure:"extraction"`
	// Templates maps a template name produced by the triage router to the
	// reply body sent for it.
	Templates map[string]string `mapstructure:"templates"`
}

type GmailConfig struct {
	TokenFile string `mapstructure:"token-file"`
	// Query selects candidate emails, e.g. "in:inbox is:unread subject:(applying OR application)".
	Query string `mapstructure:"query"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type HFConfig struct {
	APIKeyFile    string `mapstructure:"api-key-file"`
	ZeroShotModel string `mapstructure:"zero-shot-model"`
	QAModel       string `mapstructure:"qa-model"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ExtractionConfig struct {
	// TierTimeout bounds the whole tier chain for one email.
	TierTimeout  time.Duration `mapstructure:"tier-timeout"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "mailtriage triages recruitment emails: extracts application fields and routes replies",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"gmail.token-file":    "GMAIL_TOKEN_FILE",
		"gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"hf.api-key-file":     "HF_API_KEY_FILE",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is mailtriage.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for commands that talk to external services.
	if runCmd.CalledAs() == "" && reviewCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
