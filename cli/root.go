package cli

import (
	"context"
	"fmt"
	"os"

	"starklings/config"
	"starklings/exercise"
	"starklings/scarb"
	"starklings/service"
	"starklings/shared"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	configFile string
	infoFile   string
}

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg config.Config
	svc *service.ExerciseService
}

func (o *options) load() (*app, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.infoFile != "" {
		cfg.InfoFile = o.infoFile
	}
	err = shared.SetLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	list, err := exercise.LoadList(cfg.InfoFile)
	if err != nil {
		return nil, err
	}
	backend := scarb.NewBackend(cfg.Backend.Commands, cfg.Backend.Dir)
	return &app{
		cfg: cfg,
		svc: service.NewExerciseService(list, backend),
	}, nil
}

func (a *app) find(name string) (*exercise.Exercise, error) {
	return a.svc.List().Find(name)
}

// NewRootCmd builds the starklings command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "starklings",
		Short: "Small exercises to get you used to reading and writing Cairo",
		Long: `starklings tracks your progress through a list of Cairo exercises.

Every unfinished exercise contains a line '// I AM NOT DONE'. Make the
exercise compile, run or pass its tests, then delete the marker (or run
'starklings done <name>') to move on.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "configuration file (default "+config.DefaultFile+")")
	root.PersistentFlags().StringVar(&opts.infoFile, "info", "", "exercise list file, overrides the configuration")

	root.AddCommand(
		newListCmd(opts),
		newInfoCmd(opts),
		newStateCmd(opts),
		newHintCmd(opts),
		newRunCmd(opts),
		newVerifyCmd(opts),
		newDoneCmd(opts),
		newMcpCmd(opts),
		newTutorCmd(opts),
	)
	return root
}

func Execute() {
	err := NewRootCmd().ExecuteContext(context.Background())
	if err != nil {
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func exerciseArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%s expects exactly one exercise name", cmd.Name())
	}
	return nil
}
