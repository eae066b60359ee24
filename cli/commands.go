package cli

import (
	"errors"
	"fmt"
	"strings"

	"starklings/agent"
	"starklings/exercise"
	mcpserver "starklings/mcp-server"
	"starklings/service"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every exercise with its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			overview, err := a.svc.Overview(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), overview)
			return nil
		},
	}
}

func newInfoCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show the metadata of an exercise",
		Args:  exerciseArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			e, err := a.find(args[0])
			if err != nil {
				return err
			}
			exercise.DisplayInfo(cmd.OutOrStdout(), e)
			return nil
		},
	}
}

func newStateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "state <name>",
		Short: "Show whether an exercise is done, with context around its marker",
		Args:  exerciseArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			e, err := a.find(args[0])
			if err != nil {
				return err
			}
			state, err := e.State()
			if err != nil {
				return err
			}
			exercise.DisplayState(cmd.OutOrStdout(), e, state)
			return nil
		},
	}
}

func newHintCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hint <name>",
		Short: "Show the hint of an exercise",
		Args:  exerciseArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			e, err := a.find(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), e.Hint)
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <name>",
		Short: "Build, run or test a single exercise according to its mode",
		Args:  exerciseArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			e, err := a.find(args[0])
			if err != nil {
				return err
			}
			output, verifyErr := a.svc.Verify(cmd.Context(), e)
			text, err := service.FormatVerify(e, output, verifyErr)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return verifyErr
		},
	}
}

// verifyOne checks a single exercise and reports whether the walk may move
// on to the next one.
func verifyOne(cmd *cobra.Command, a *app, e *exercise.Exercise) (bool, error) {
	out := cmd.OutOrStdout()
	output, verifyErr := a.svc.Verify(cmd.Context(), e)
	if verifyErr != nil {
		text, err := service.FormatVerify(e, output, verifyErr)
		if err != nil {
			return false, err
		}
		fmt.Fprint(out, text)
		return false, verifyErr
	}
	state, err := e.State()
	if err != nil {
		return false, err
	}
	if !state.IsDone() {
		exercise.DisplayState(out, e, state)
		fmt.Fprintln(out, "Remove the 'I AM NOT DONE' marker to move on to the next exercise.")
		return false, nil
	}
	fmt.Fprintf(out, "Exercise '%s' %s succeeded\n", e.Name, e.Mode)
	return true, nil
}

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [name]",
		Short: "Check the exercises in order and stop at the first one that is not finished",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				e, err := a.find(args[0])
				if err != nil {
					return err
				}
				_, err = verifyOne(cmd, a, e)
				return err
			}
			for _, e := range a.svc.List().Exercises {
				next, err := verifyOne(cmd, a, e)
				if !next {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All exercises are done!")
			return nil
		},
	}
}

func newDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <name>",
		Short: "Remove the 'I AM NOT DONE' markers from an exercise",
		Args:  exerciseArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			e, err := a.find(args[0])
			if err != nil {
				return err
			}
			err = e.MarkDone()
			if err != nil {
				return err
			}
			state, err := e.State()
			if err != nil {
				return err
			}
			exercise.DisplayState(cmd.OutOrStdout(), e, state)
			return nil
		},
	}
}

func newMcpCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the exercise tools to an MCP client over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			s, err := mcpserver.NewServer(a.svc)
			if err != nil {
				return err
			}
			return s.Run()
		},
	}
}

func newTutorCmd(opts *options) *cobra.Command {
	var question string
	var mcpServers []string
	cmd := &cobra.Command{
		Use:   "tutor <name>",
		Short: "Ask an LLM tutor for a hint on an exercise",
		Args:  exerciseArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load()
			if err != nil {
				return err
			}
			e, err := a.find(args[0])
			if err != nil {
				return err
			}
			w, err := agent.NewWorkflow(a.cfg.Tutor, a.svc)
			if err != nil {
				return err
			}
			defer w.Close()
			for _, server := range mcpServers {
				fields := strings.Fields(server)
				if len(fields) == 0 {
					return errors.New("empty --mcp command")
				}
				err = w.ConnectMCP(cmd.Context(), fields[0], fields[1:]...)
				if err != nil {
					return err
				}
			}
			answer, err := w.TutorAgent(cmd.Context(), e, question)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question for the tutor")
	cmd.Flags().StringArrayVar(&mcpServers, "mcp", nil, "extra MCP server command whose tools the tutor may use (repeatable)")
	return cmd
}
