package main

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/openzim/ted/internal/config"
	"github.com/openzim/ted/internal/fetch"
	"github.com/openzim/ted/internal/queue"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) withStore(fn func(*config.Config, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(cfg, store)
}

func newFetchClient(cfg *config.Config, opts ...fetch.Option) *fetch.Client {
	base := []fetch.Option{
		fetch.WithTimeout(time.Duration(cfg.Fetch.RequestTimeout) * time.Second),
		fetch.WithUserAgent(cfg.Fetch.UserAgent),
	}
	return fetch.NewClient(append(base, opts...)...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
