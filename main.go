package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hawkline/mailflow/config"
	"github.com/hawkline/mailflow/engine"
	"github.com/hawkline/mailflow/lock"
	"github.com/hawkline/mailflow/logger"
	"github.com/hawkline/mailflow/message"
	"github.com/hawkline/mailflow/model"
	"github.com/hawkline/mailflow/rpc"
	"github.com/hawkline/mailflow/step"
	"github.com/hawkline/mailflow/subscriber"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const EXIT_LOCK_HELD = 2

type cli struct {
	conf      config.Config
	startStep string
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().String("config-file", "", "Path to KEY = VALUE config file.")
	cmd.Flags().String("start-step", model.STEP_LIST_CREATE, "workflow step to start from")
	return viper.BindPFlags(cmd.Flags())
}

func (c *cli) setupConfig(cmd *cobra.Command, args []string) error {
	configFile := viper.GetString("config-file")
	if configFile == "" {
		return fmt.Errorf("--config-file is required")
	}
	conf, err := config.Load(configFile)
	if err != nil {
		return err
	}
	c.conf = conf
	c.startStep = viper.GetString("start-step")
	return nil
}

func (c *cli) run(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	logger.Info("starting campaign run", zap.String("runId", runID), zap.String("startStep", c.startStep))

	rpcClient, err := rpc.NewHTTPClient(c.conf.Endpoint, c.conf.CredentialID, c.conf.CredentialKey, c.conf.CallTimeout)
	if err != nil {
		return err
	}
	renderer, err := message.NewRenderer(c.conf.TemplateFile)
	if err != nil {
		return err
	}

	lockDir := c.conf.LockDir
	if lockDir == "" {
		lockDir = os.TempDir()
	}
	runLock := lock.New(lockDir, filepath.Base(os.Args[0]))
	if err := runLock.Acquire(runID); err != nil {
		if errors.Is(err, lock.ErrLocked) {
			fmt.Fprintf(os.Stderr, "another campaign run is in progress, lock held at %s\n", runLock.Path())
			os.Exit(EXIT_LOCK_HELD)
		}
		return err
	}

	steps := step.NewContainer(rpcClient, c.conf, subscriber.NewLoader(c.conf.CallTimeout), renderer, runLock)
	eng, err := engine.NewWorkflowEngine(step.Registry(steps))
	if err != nil {
		return err
	}
	stash := model.NewStash(c.conf.DefaultListID)
	if err := eng.Run(cmd.Context(), stash, c.startStep); err != nil {
		return err
	}
	fmt.Printf("campaign workflow complete, mailing list %d campaign %d\n", stash.MailingListID, stash.CampaignID)
	return nil
}

func main() {
	defer logger.Sync()
	c := &cli{}

	cmd := &cobra.Command{
		Use:          "mailflow",
		PreRunE:      c.setupConfig,
		RunE:         c.run,
		SilenceUsage: true,
	}

	if err := setupFlags(cmd); err != nil {
		log.Fatal(err)
	}

	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
