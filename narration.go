package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/flipbook/internal/audio"
	"github.com/dgnsrekt/flipbook/internal/cache"
	"github.com/dgnsrekt/flipbook/internal/gemini"
	"github.com/dgnsrekt/flipbook/internal/narration"
	"github.com/dgnsrekt/flipbook/internal/pcm"
	"github.com/dgnsrekt/flipbook/ui"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/viper"
)

// apiKey returns the configured key, falling back to GEMINI_API_KEY.
func apiKey() string {
	if k := viper.GetString("gemini.api_key"); k != "" {
		return k
	}
	return os.Getenv("GEMINI_API_KEY")
}

// cacheDir returns where synthesized narration is kept.
func cacheDir() (string, error) {
	if dir := viper.GetString("cache.dir"); dir != "" {
		return expandPath(dir), nil
	}
	dir, err := gap.NewScope(gap.User, "flipbook").CacheDir()
	if err != nil {
		return "", err //nolint:wrapcheck
	}
	return filepath.Join(dir, "narration"), nil
}

func cacheConfig() (cache.Config, error) {
	dir, err := cacheDir()
	if err != nil {
		return cache.Config{}, err
	}
	cfg := cache.DefaultConfig(dir)
	cfg.DiskCapacity = int64(viper.GetInt("cache.max_size")) << 20
	cfg.Disk = viper.GetBool("cache.disk")
	return cfg, nil
}

// setupNarration builds the read-aloud services. Narration is left off,
// with a log entry, when any of them is unavailable. The returned closer
// releases whatever was opened.
func setupNarration(cfg *ui.Config) (*ui.Narration, func() error) {
	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	client, err := gemini.New(gemini.Config{
		APIKey:            apiKey(),
		Endpoint:          viper.GetString("gemini.endpoint"),
		Model:             model,
		Voice:             voice,
		Timeout:           viper.GetDuration("gemini.timeout"),
		RequestsPerMinute: viper.GetInt("gemini.requests_per_minute"),
	})
	if err != nil {
		log.Info("narration disabled", "error", err)
		return nil, closeAll
	}
	cfg.Voice = client.Voice()
	cfg.Model = client.Model()

	player, err := audio.NewPlayer(audio.DefaultConfig())
	if err != nil {
		log.Warn("narration disabled: no audio output", "error", err)
		return nil, closeAll
	}
	closers = append(closers, player.Close)

	n := &ui.Narration{
		Synthesizer: client,
		Player: narration.PlayerFunc(func(buf pcm.Buffer) (narration.Playback, error) {
			h, err := player.Play(buf)
			if err != nil {
				return nil, err //nolint:wrapcheck
			}
			return h, nil
		}),
	}

	ccfg, err := cacheConfig()
	if err != nil {
		log.Warn("narration cache disabled", "error", err)
		return n, closeAll
	}
	store, err := cache.New(ccfg)
	if err != nil {
		log.Warn("narration cache disabled", "error", err)
		return n, closeAll
	}
	closers = append(closers, store.Close)

	v, m := client.Voice(), client.Model()
	n.Cache = store
	n.CacheKey = func(prompt string) string {
		return cache.Key(prompt, v, m)
	}

	log.Debug("narration enabled", "voice", v, "model", m, "cache", ccfg.Dir)
	return n, closeAll
}
