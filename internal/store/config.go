package store

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode    string `yaml:"mode"`
	SiteURL string `yaml:"site_url"`
	TopN    int    `yaml:"top_n"`

	Keywords struct {
		Provider      string `yaml:"provider"`
		SpreadsheetID string `yaml:"spreadsheet_id"`
		Range         string `yaml:"range"`
		Static        []struct {
			Keyword      string `yaml:"keyword"`
			PreviousRank string `yaml:"previous_rank"`
		} `yaml:"static"`
	} `yaml:"keywords"`

	Serp struct {
		Provider       string `yaml:"provider"`
		Endpoint       string `yaml:"endpoint"`
		Engine         string `yaml:"engine"`
		SearchDepth    int    `yaml:"search_depth"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Location       string `yaml:"location"`
		Language       string `yaml:"language"`
		Params         struct {
			Query  string `yaml:"query"`
			APIKey string `yaml:"api_key"`
			Num    string `yaml:"num"`
		} `yaml:"params"`
		HTML struct {
			BaseURL        string `yaml:"base_url"`
			ResultSelector string `yaml:"result_selector"`
			LinkSelector   string `yaml:"link_selector"`
		} `yaml:"html"`
		Mock map[string]int `yaml:"mock"`
	} `yaml:"serp"`

	LLM struct {
		Provider       string  `yaml:"provider"`
		Model          string  `yaml:"model"`
		MaxTokens      int     `yaml:"max_tokens"`
		Temperature    float32 `yaml:"temperature"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
	} `yaml:"llm"`

	Analysis struct {
		CompetitorLimit       int  `yaml:"competitor_limit"`
		SnippetMaxChars       int  `yaml:"snippet_max_chars"`
		ProfilePages          bool `yaml:"profile_pages"`
		ProfileTimeoutSeconds int  `yaml:"profile_timeout_seconds"`
	} `yaml:"analysis"`

	Report struct {
		NotifyEmpty    bool `yaml:"notify_empty"`
		MessageLimit   int  `yaml:"message_limit"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"report"`

	Discord struct {
		GuildID string `yaml:"guild_id"`
	} `yaml:"discord"`

	Ops struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"ops"`
}

// Validate checks the loaded configuration and reports every problem at
// once rather than stopping at the first.
func (c *Config) Validate() error {
	var problems []string

	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		problems = append(problems, fmt.Sprintf("mode must be 'DRY_RUN' or 'LIVE', got '%s'", c.Mode))
	}
	if c.SiteURL == "" {
		problems = append(problems, "site_url cannot be empty")
	}
	if c.TopN <= 0 {
		problems = append(problems, fmt.Sprintf("top_n must be positive, got %d", c.TopN))
	}

	switch c.Keywords.Provider {
	case "SHEETS":
		if c.Keywords.SpreadsheetID == "" {
			problems = append(problems, "keywords.spreadsheet_id required for SHEETS provider")
		}
	case "STATIC":
		if len(c.Keywords.Static) == 0 {
			problems = append(problems, "keywords.static cannot be empty for STATIC provider")
		}
	default:
		problems = append(problems, fmt.Sprintf("keywords.provider must be 'SHEETS' or 'STATIC', got '%s'", c.Keywords.Provider))
	}

	switch c.Serp.Provider {
	case "HTTP":
		if c.Serp.Endpoint == "" {
			problems = append(problems, "serp.endpoint required for HTTP provider")
		}
	case "HTML":
		if c.Serp.HTML.BaseURL == "" {
			problems = append(problems, "serp.html.base_url required for HTML provider")
		}
	case "MOCK":
	default:
		problems = append(problems, fmt.Sprintf("serp.provider must be 'HTTP', 'HTML', or 'MOCK', got '%s'", c.Serp.Provider))
	}

	switch c.LLM.Provider {
	case "GEMINI", "OPENAI", "CLAUDE", "NOOP":
	default:
		problems = append(problems, fmt.Sprintf("llm.provider must be 'GEMINI', 'OPENAI', 'CLAUDE', or 'NOOP', got '%s'", c.LLM.Provider))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// MissingSecrets returns the names of environment variables the active
// providers need but that are not set. DRY_RUN only warns about these;
// LIVE refuses to start.
func (c *Config) MissingSecrets() []string {
	var missing []string

	check := func(name string) {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}

	if c.Keywords.Provider == "SHEETS" {
		if os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" {
			missing = append(missing, "GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON")
		}
	}
	if c.Mode == "LIVE" {
		check("DISCORD_WEBHOOK_URL")
	}
	if c.Serp.Provider == "HTTP" {
		check("SERP_API_KEY")
	}
	switch c.LLM.Provider {
	case "GEMINI":
		check("GEMINI_API_KEY")
	case "OPENAI":
		check("OPENAI_API_KEY")
	case "CLAUDE":
		check("CLAUDE_API_KEY")
	}

	return missing
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.TopN == 0 {
		c.TopN = 10
	}
	if c.Keywords.Provider == "" {
		c.Keywords.Provider = "SHEETS"
	}
	if c.Keywords.Range == "" {
		c.Keywords.Range = "Sheet1!A:B"
	}
	if c.Serp.Provider == "" {
		if c.Mode == "DRY_RUN" {
			c.Serp.Provider = "MOCK"
		} else {
			c.Serp.Provider = "HTTP"
		}
	}
	if c.Serp.Engine == "" {
		c.Serp.Engine = "google"
	}
	if c.Serp.SearchDepth == 0 {
		c.Serp.SearchDepth = 10
	}
	if c.Serp.TimeoutSeconds == 0 {
		c.Serp.TimeoutSeconds = 30
	}
	if c.Serp.Params.Query == "" {
		c.Serp.Params.Query = "q"
	}
	if c.Serp.Params.APIKey == "" {
		c.Serp.Params.APIKey = "api_key"
	}
	if c.Serp.Params.Num == "" {
		c.Serp.Params.Num = "num"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	if c.LLM.Model == "" {
		switch c.LLM.Provider {
		case "GEMINI":
			c.LLM.Model = "gemini-1.5-flash"
		case "OPENAI":
			c.LLM.Model = "gpt-4o-mini"
		case "CLAUDE":
			c.LLM.Model = "claude-3-5-haiku-latest"
		}
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1024
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 60
	}
	if c.Analysis.CompetitorLimit == 0 {
		c.Analysis.CompetitorLimit = 5
	}
	if c.Analysis.SnippetMaxChars == 0 {
		c.Analysis.SnippetMaxChars = 160
	}
	if c.Analysis.ProfileTimeoutSeconds == 0 {
		c.Analysis.ProfileTimeoutSeconds = 20
	}
	if c.Report.MessageLimit == 0 {
		c.Report.MessageLimit = 2000
	}
	if c.Report.TimeoutSeconds == 0 {
		c.Report.TimeoutSeconds = 20
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}
