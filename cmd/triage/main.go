package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/mikey/mail-sentinel/internal/adapters/gateway"
	"github.com/mikey/mail-sentinel/internal/config"
	"github.com/mikey/mail-sentinel/internal/core"
	"github.com/mikey/mail-sentinel/internal/domains"
	"github.com/mikey/mail-sentinel/internal/factory"
	"github.com/mikey/mail-sentinel/internal/logging"
	"go.uber.org/zap"
)

var (
	// Reviewer flags
	provider    = flag.String("reviewer", "none", "Reviewer provider (none, openai, bedrock, gemini)")
	margin      = flag.Float64("margin", 2.0, "Score band below a threshold that triggers review")
	maxTokens   = flag.Int("max-tokens", 1000, "Maximum tokens for reviewer response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for reviewer generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for reviewer generation")
	maxBodySize = flag.Int("max-body-size", 4096, "Maximum email body size to send to the reviewer")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Load and validate the policy rule set before touching any email
	rules, err := cfg.GetRuleSet()
	if err != nil {
		logger.Fatal("Failed to load policy rules", zap.Error(err))
	}

	// Initialize the reviewer if one is configured
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	reviewerFactory := factory.NewReviewerFactory(cfg, logger, textProcessor)
	reviewer, err := reviewerFactory.CreateReviewer()
	if err != nil {
		logger.Fatal("Failed to create reviewer", zap.Error(err))
	}

	classifier := domains.NewClassifier(rules.FreeDomains, logger)
	service := core.NewSentinelService(rules, classifier, reviewer, reviewerFactory.GetReviewMargin(), logger)

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	// Parse email
	msg, err := mail.ReadMessage(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	from := msg.Header.Get("From")
	to := msg.Header.Get("To")
	subject := msg.Header.Get("Subject")

	bodyBytes, err := io.ReadAll(msg.Body)
	if err != nil {
		logger.Fatal("Failed to read email body", zap.Error(err))
	}

	email := &core.Email{
		From:    from,
		To:      strings.Split(to, ","),
		Subject: subject,
		Body:    string(bodyBytes),
		Headers: make(map[string][]string),
	}
	for k, v := range msg.Header {
		email.Headers[k] = v
	}

	// Evaluate and print through the CLI gateway
	cli, err := gateway.NewCliGateway(service, nil, logger, *verbose)
	if err != nil {
		logger.Fatal("Failed to create CLI gateway", zap.Error(err))
	}

	decision, err := cli.ProcessEmail(context.Background(), email)
	if err != nil {
		logger.Fatal("Failed to evaluate email", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := reviewer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close reviewer", zap.Error(err))
		}
	}

	// Non-zero exit for anything the agent may not answer on its own
	if decision.Action != core.ActionAutoReply {
		os.Exit(2)
	}
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("reviewer.provider", *provider)
	v.Set("reviewer.margin", *margin)

	switch *provider {
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_body_size", *maxBodySize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_body_size", *maxBodySize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_body_size", *maxBodySize)
	}

	return config.NewFromViper(v)
}
