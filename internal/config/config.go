package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-sentinel/")
	v.AddConfigPath("$HOME/.mail-sentinel")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_SENTINEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values. The keyword tables and
// trip points are tunable configuration, calibrated against the labeled
// evaluation set, not fixed constants.
func setDefaults(v *viper.Viper) {
	// Intent keyword-weight tables. Each table maps a pattern to the
	// weight added to the category score per distinct match.
	v.SetDefault("policy.intent_weights.mna", weighted(5, []string{
		"acquire", "acquisition", "buy your company", "purchase your company", "merger", "m&a",
		"investment proposal", "valuation", "term sheet", "due diligence", "equity", "stake",
		"adquirir", "compra de la empresa", "comprar la compañía", "fusión", "adquisición",
		"oferta de compra", "valoración", "participación", "inversión",
	}))
	v.SetDefault("policy.intent_weights.legal", weighted(4, []string{
		"contract", "agreement", "nda", "gdpr", "compliance", "lawsuit", "legal notice",
		"contrato", "acuerdo", "rgpd", "cumplimiento", "demanda", "notificación legal",
	}))
	v.SetDefault("policy.intent_weights.security", weighted(5, []string{
		"password", "2fa", "authentication", "breach", "hack", "phishing",
		"contraseña", "intrusión", "hackeo", "suplantación",
		"wire transfer", "bank details", "change payment", "invoice change",
		"transferencia", "cambiar pago", "cambio de cuenta", "datos bancarios",
	}))
	v.SetDefault("policy.intent_weights.sales", weighted(2, []string{
		"pricing", "quote", "proposal", "demo", "partnership", "reseller",
		"precio", "presupuesto", "propuesta", "demostración", "colaboración",
	}))
	v.SetDefault("policy.intent_weights.support", weighted(1, []string{
		"help", "issue", "bug", "problem", "doesn't work", "error",
		"ayuda", "incidencia", "fallo", "no funciona", "problema",
	}))

	// Escalation thresholds per intent
	v.SetDefault("policy.thresholds", map[string]interface{}{
		"mna":      5.0,
		"legal":    8.0,
		"security": 10.0,
		"sales":    6.0,
		"support":  4.0,
	})

	// Subject matches carry more signal than body matches
	v.SetDefault("policy.subject_multiplier", 1.5)

	// Hard triggers: conjunction of filter flags that arms a category
	// regardless of score. Fraud signals get zero tolerance.
	v.SetDefault("policy.hard_triggers", map[string]interface{}{
		"security": []string{"financial_change_request", "urgency_marker"},
	})

	// Known free-webmail providers
	v.SetDefault("policy.free_domains", []string{
		"gmail.com", "yahoo.com", "hotmail.com", "outlook.com",
		"live.com", "icloud.com", "proton.me", "protonmail.com",
	})

	// Coarse filter term lists
	v.SetDefault("policy.urgency_terms", []string{
		"urgent", "asap", "immediately", "today", "right away", "time-sensitive", "confidential",
		"urgente", "inmediato", "hoy", "confidencial", "reservado",
	})
	v.SetDefault("policy.financial_change_terms", []string{
		"wire transfer", "bank details", "change payment", "invoice change", "update bank",
		"transferencia", "cambiar pago", "cambio de cuenta", "datos bancarios",
	})
	v.SetDefault("policy.legal_terms", []string{
		"contract", "agreement", "nda", "gdpr", "compliance", "lawsuit", "legal notice",
		"contrato", "acuerdo", "rgpd", "cumplimiento", "demanda", "notificación legal",
	})
	v.SetDefault("policy.acquisition_terms", []string{
		"acquire", "acquisition", "merger", "m&a", "term sheet", "due diligence",
		"adquirir", "fusión", "adquisición", "oferta de compra",
	})
	v.SetDefault("policy.role_terms", []string{
		"ceo", "cfo", "coo", "cto", "chairman", "board", "director", "vp", "vice president",
		"general counsel", "legal counsel", "head of", "founder", "owner", "president",
		"dirección", "consejo", "presidente", "propietario", "fundador", "asesoría jurídica",
	})

	// Reviewer defaults
	v.SetDefault("reviewer.provider", "none")
	v.SetDefault("reviewer.margin", 2.0)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-pro")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// Audit defaults
	v.SetDefault("audit.type", "memory")
	v.SetDefault("audit.enabled", true)
	v.SetDefault("audit.retention", "720h")
	v.SetDefault("audit.cleanup_frequency", "1h")
	v.SetDefault("audit.sqlite_path", "/data/sentinel_audit.db")
	v.SetDefault("audit.mysql_dsn", "user:password@tcp(localhost:3306)/mail_sentinel")

	// Server defaults
	v.SetDefault("server.gateway_type", "smtp")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.headers.action", "X-Sentinel-Action")
	v.SetDefault("server.headers.confidence", "X-Sentinel-Confidence")
	v.SetDefault("server.headers.rules", "X-Sentinel-Rules")
	v.SetDefault("server.hold_address", "")
	v.SetDefault("server.downstream.enabled", false)
	v.SetDefault("server.downstream.address", "127.0.0.1")
	v.SetDefault("server.downstream.port", 10026)
	v.SetDefault("cli.verbose", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// weighted builds a pattern table assigning the same weight to every term
func weighted(weight float64, terms []string) map[string]interface{} {
	table := make(map[string]interface{}, len(terms))
	for _, term := range terms {
		table[term] = weight
	}
	return table
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
