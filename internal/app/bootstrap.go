package app

import (
	"context"

	"go.uber.org/zap"

	"procurement-tracker/internal/ai"
	"procurement-tracker/internal/config"
	"procurement-tracker/internal/observability"
)

// Build opens the configured store and assembles the ApplicationService. The
// note parser is wired only when an OpenAI key is configured.
func Build(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, log *zap.Logger) (ApplicationService, func(), error) {
	if log == nil {
		log = zap.NewNop()
	}
	st, cleanup, err := OpenStore(ctx, cfg, metrics, log)
	if err != nil {
		return nil, nil, err
	}

	var parser ai.NoteParser
	if cfg.OpenAI.APIKey != "" {
		parser = ai.NewAgent(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	} else {
		log.Warn("openai.api_key not set; delivery note interpretation disabled")
	}

	return NewAppService(st, cfg.Policy.Core(), metrics, parser, log), cleanup, nil
}
