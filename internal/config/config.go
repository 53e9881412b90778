package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"storefront.db"`

	Paymob Paymob `envPrefix:"PAYMOB_"`
	Auth   Auth   `envPrefix:"AUTH_"`
}

type Paymob struct {
	BaseApiURL    string `env:"BASE_API_URL" envDefault:"https://accept.paymob.com"`
	APIKey        string `env:"API_KEY"`
	HMACSecret    string `env:"HMAC_SECRET"`
	IntegrationID int    `env:"INTEGRATION_ID"`
	IframeID      string `env:"IFRAME_ID"`
	Currency      string `env:"CURRENCY" envDefault:"EGP"`
	Country       string `env:"COUNTRY" envDefault:"EG"`
}

type Auth struct {
	// shared with the session provider that issues the admin tokens
	JWTSecret string `env:"JWT_SECRET"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
