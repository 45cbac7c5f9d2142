package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

// Provider holds the connection settings shared by every upstream client.
type Provider struct {
	BaseURL   string        `mapstructure:"baseURL"`
	Host      string        `mapstructure:"host"`
	APIKey    string        `mapstructure:"apiKey"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rateLimit"`
	Burst     int           `mapstructure:"burst"`
}

type Config struct {
	Mode   string `mapstructure:"mode"`
	Dotenv string `mapstructure:"dotenv"`
	Server struct {
		HTTPPort        string        `mapstructure:"HTTPPort"`
		Timeout         time.Duration `mapstructure:"HTTPTimeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	} `mapstructure:"server"`
	Observability struct {
		ServiceName string `mapstructure:"serviceName"`
		MetricsPort string `mapstructure:"metricsPort"`
	} `mapstructure:"observability"`
	RateLimit struct {
		RequestsPerMinute int `mapstructure:"requestsPerMinute"`
	} `mapstructure:"ratelimit"`
	Providers struct {
		AgodaFlights Provider `mapstructure:"agodaFlights"`
		AgodaHotels  Provider `mapstructure:"agodaHotels"`
		GooglePlaces Provider `mapstructure:"googlePlaces"`
		Kakao        Provider `mapstructure:"kakao"`
		Weather      Provider `mapstructure:"weather"`
	} `mapstructure:"providers"`
	Exchange struct {
		BaseURL      string        `mapstructure:"baseURL"`
		AuthKey      string        `mapstructure:"authKey"`
		DataCode     string        `mapstructure:"dataCode"`
		Timeout      time.Duration `mapstructure:"timeout"`
		Attempts     int           `mapstructure:"attempts"`
		Backoff      time.Duration `mapstructure:"backoff"`
		FallbackRate float64       `mapstructure:"fallbackRate"`
		CacheTTL     time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"exchange"`
	LLM struct {
		Model       string        `mapstructure:"model"`
		APIKey      string        `mapstructure:"apiKey"`
		Temperature float32       `mapstructure:"temperature"`
		Timeout     time.Duration `mapstructure:"timeout"`
	} `mapstructure:"llm"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// secrets come from the environment, e.g. PROVIDERS_KAKAO_APIKEY
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	bindSecrets(v)

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// bindSecrets maps the conventional env names onto the config keys that
// AutomaticEnv would otherwise only see when the key already exists in the file.
func bindSecrets(v *viper.Viper) {
	_ = v.BindEnv("providers.agodaFlights.apiKey", "RAPIDAPI_KEY")
	_ = v.BindEnv("providers.agodaHotels.apiKey", "RAPIDAPI_KEY")
	_ = v.BindEnv("providers.googlePlaces.apiKey", "GOOGLE_MAPS_API_KEY")
	_ = v.BindEnv("providers.kakao.apiKey", "KAKAO_REST_API_KEY")
	_ = v.BindEnv("providers.weather.apiKey", "OPENWEATHER_API_KEY")
	_ = v.BindEnv("exchange.authKey", "EXCHANGE_API_KEY")
	_ = v.BindEnv("llm.apiKey", "GOOGLE_GEMINI_API_KEY")
}
