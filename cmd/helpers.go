package cmd

import (
	"github.com/dayuer/chatpacer/internal/config"
	"github.com/dayuer/chatpacer/internal/discord"
	"github.com/dayuer/chatpacer/internal/responder"
	"github.com/dayuer/chatpacer/internal/rules"
	"go.uber.org/zap"
)

// makeClient creates the REST client from the loaded config.
func makeClient(cfg config.Config, log *zap.Logger) *discord.Client {
	opts := []discord.Option{discord.WithLogger(log)}
	if cfg.Discord.APIBase != "" {
		opts = append(opts, discord.WithBaseURL(cfg.Discord.APIBase))
	}
	if cfg.Discord.UserAgent != "" {
		opts = append(opts, discord.WithUserAgent(cfg.Discord.UserAgent))
	}
	if cfg.Discord.Timeout > 0 {
		opts = append(opts, discord.WithTimeout(cfg.Discord.Timeout.Std()))
	}
	return discord.NewClient(cfg.Discord.Token, opts...)
}

// responderConfig maps the file settings onto the loop's settings.
// Validate(JobRespond) must have passed.
func responderConfig(cfg config.Config) responder.Config {
	r := cfg.Responder
	out := responder.DefaultConfig(cfg.Discord.ChannelID)
	if r.PollLimit > 0 {
		out.PollLimit = r.PollLimit
	}
	if r.PollInterval > 0 {
		out.PollInterval = r.PollInterval.Std()
	}
	out.MinReplyDelay = r.MinReplyDelay.Std()
	out.MaxReplyDelay = r.MaxReplyDelay.Std()
	out.Cooldowns = responder.Cooldowns{User: r.UserCooldown.Std(), Channel: r.ChannelCooldown.Std()}

	loc, _ := r.WorkingHours.Location()
	out.Hours = responder.WorkingHours{Start: r.WorkingHours.Start, End: r.WorkingHours.End, Location: loc}

	if r.Typing.PerChar > 0 {
		out.Typing = responder.TypingConfig{
			PerChar:  r.Typing.PerChar.Std(),
			Variance: r.Typing.Variance,
			Min:      r.Typing.Min.Std(),
			Max:      r.Typing.Max.Std(),
		}
	}
	return out
}

// reloaderConfig maps the file settings onto the rule reloader.
func reloaderConfig(cfg config.Config) rules.ReloaderConfig {
	return rules.ReloaderConfig{
		Interval: cfg.Responder.ReloadInterval.Std(),
		Watch:    cfg.Responder.WatchRules,
	}
}
