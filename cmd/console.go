package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/vacancy-bot/internal/session"
)

const (
	consoleUser = "console"

	PromptWrite = "Write a message"
	PromptQuit  = "Quit"
)

var errExit = errors.New("exit requested")

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Talk to the bot in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		console(cmd)
	},
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().Bool("local", false, "use the local catalog file and the sqlite sink")
}

// choice is one console menu item mapped onto a session event.
type choice struct {
	label string
	event session.Event
}

func console(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	if local, _ := cmd.Flags().GetBool("local"); local {
		config.Catalog.Driver = driverFile
		config.Sink.Driver = driverSQLite
	}

	c, err := buildMachine(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the bot", zap.Error(err))
	}
	defer c.close(logger)

	prompts := c.machine.Handle(ctx, session.Event{UserID: consoleUser, Kind: session.EventStart})
	for {
		printPrompts(prompts)

		ev, err := ask(prompts)
		if err != nil {
			if errors.Is(err, errExit) || errors.Is(err, promptui.ErrInterrupt) {
				logger.Info("exiting", zap.String("reason", "quit from console"))
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		prompts = c.machine.Handle(ctx, ev)

		if sess, ok := c.machine.Session(consoleUser); ok {
			logger.Debug("session", zap.Stringer("state", sess.State), zap.Int("candidates", len(sess.Candidates)))
		}
	}
}

func printPrompts(prompts []session.Prompt) {
	for _, p := range prompts {
		fmt.Println(p.Text)
		fmt.Println()
	}
}

func ask(prompts []session.Prompt) (session.Event, error) {
	options := choices(prompts)

	items := make([]string, 0, len(options)+2)
	for _, ch := range options {
		items = append(items, ch.label)
	}
	items = append(items, PromptWrite, PromptQuit)

	menu := promptui.Select{
		Label: "What next?",
		Items: items,
		Size:  10,
	}

	i, selected, err := menu.Run()
	if err != nil {
		return session.Event{}, err
	}

	switch selected {
	case PromptQuit:
		return session.Event{}, errExit
	case PromptWrite:
		input := promptui.Prompt{
			Label: "Message",
			Validate: func(s string) error {
				if strings.TrimSpace(s) == "" {
					return errors.New("empty message")
				}
				return nil
			},
		}
		text, err := input.Run()
		if err != nil {
			return session.Event{}, err
		}
		return session.Event{UserID: consoleUser, Kind: session.EventText, Text: text}, nil
	default:
		return options[i].event, nil
	}
}

// choices collects the distinct actions of prompts.
func choices(prompts []session.Prompt) []choice {
	type key struct {
		kind  session.ActionKind
		index int
	}

	seen := map[key]bool{}
	var out []choice

	for _, p := range prompts {
		for _, a := range p.Actions {
			k := key{kind: a.Kind, index: a.Index}
			if a.Kind != session.ActionSelect {
				k.index = 0
			}
			if seen[k] {
				continue
			}
			seen[k] = true

			ev := session.Event{UserID: consoleUser}
			label := a.Label

			switch a.Kind {
			case session.ActionSelect:
				ev.Kind = session.EventSelect
				ev.Index = a.Index
				label = fmt.Sprintf("%s #%d", a.Label, a.Index+1)
			case session.ActionList:
				ev.Kind = session.EventList
			case session.ActionQuestions:
				ev.Kind = session.EventQuestions
			case session.ActionBack:
				ev.Kind = session.EventStart
			default:
				ev.Kind = session.EventCancel
			}

			out = append(out, choice{label: label, event: ev})
		}
	}

	return out
}
