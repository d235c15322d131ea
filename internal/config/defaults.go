package config

// defaultSystemInstruction is the system prompt sent to the generation model.
// It establishes the assistant's role and the context-first answering policy.
const defaultSystemInstruction = `You are an intelligent University Admissions Assistant for The NorthCap University (NCU), designed to help students with admissions and university-related questions.

Role: Help students with university admissions questions about programs, requirements, deadlines, fees, and application processes.

Guidelines:
- Provide accurate, concise, and student-friendly answers
- Use bullet points and structured formatting when helpful
- IMPORTANT: First, try to answer from the provided university context data
- If specific NCU information is not in the context, use your general knowledge about university systems and note "This is general information - please verify with NCU directly"
- For details not in the context, suggest contacting: admissions@ncuindia.edu or +91-124-4191000
- Never say "I don't have that information" without trying to help with general knowledge first
- Be encouraging and supportive
- Keep responses brief but comprehensive
- Cite specific details from the context when available (e.g., "According to NCU data...")
- Use plain text formatting without markdown symbols

Context Data: You have access to official NCU data about admissions requirements, academic programs, tuition fees, deadlines, and contact information. Use this data as your primary source, and supplement with general knowledge when needed.`

// DefaultScrapeTargets mirror the sections of a typical university site worth
// ingesting when scraping is turned on.
var DefaultScrapeTargets = []ScrapeTarget{
	{Path: "/admissions", Selectors: []string{"div.content", "div.main", "article"}},
	{Path: "/programs", Selectors: []string{"div.program-card", "p.description"}},
	{Path: "/tuition", Selectors: []string{"table.tuition", "table.fees"}},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     "0.0.0.0",
			Port:     5000,
			AllowAll: true,
		},
		Data: DataConfig{
			Dir:      "college_data",
			Include:  []string{"*.txt", "*.md"},
			Exclude:  nil,
			CacheDir: "cache",
		},
		ScaleDown: ScaleDownConfig{
			URL:            "https://api.scaledown.xyz/compress/raw/",
			Rate:           "auto",
			Model:          "gemini-2.5-flash",
			TimeoutSeconds: 15,
		},
		Generation: GenerationConfig{
			Provider:          ProviderGoogle,
			Model:             "gemini-2.5-flash",
			Temperature:       0.7,
			TopP:              0.95,
			MaxTokens:         1024,
			TimeoutSeconds:    30,
			RPM:               0,
			SystemInstruction: defaultSystemInstruction,
		},
		Scraping: ScrapingConfig{
			Enabled:         false,
			BaseURL:         "https://university-website.edu",
			Targets:         DefaultScrapeTargets,
			TimeoutSeconds:  10,
			CacheTTLSeconds: 3600,
			UserAgent:       "UniversityAdmissionsBot/1.0 (Educational Purpose)",
		},
		LogLevel: "info",
	}
}
