package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/worldquiz.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL is optional; when empty the country cache stays in-process.
	RedisURL string `env:"REDIS_URL"`

	CountriesURL string        `env:"COUNTRIES_URL"`
	CountriesTTL time.Duration `env:"COUNTRIES_TTL" envDefault:"1h"`
	// TravelFactsPath points at the harvested enrichment dataset; optional.
	TravelFactsPath string `env:"TRAVEL_FACTS_PATH" envDefault:"data/countries_data.json"`

	ExploreDuration  time.Duration `env:"EXPLORE_DURATION" envDefault:"5m"`
	QuizDuration     time.Duration `env:"QUIZ_DURATION" envDefault:"5m"`
	AnswerDelay      time.Duration `env:"ANSWER_DELAY" envDefault:"2s"`
	LeaderboardLimit int           `env:"LEADERBOARD_LIMIT" envDefault:"50"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
