package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/concierge/concierge/internal/config"
	"github.com/concierge/concierge/internal/dependency"
	"github.com/concierge/concierge/internal/schema"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to concierge from the terminal",
	Long:  "Talk to concierge from the terminal. With -m, answers a single message and exits; otherwise starts an interactive session.",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
}

// stdoutSink streams answer fragments to the terminal.
type stdoutSink struct{}

func (stdoutSink) Fragment(text string) error {
	fmt.Print(text)
	return nil
}

func (stdoutSink) Done() error {
	fmt.Println()
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c, err := dependency.New(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	orch := c.Orchestrator()

	if chatMessage != "" {
		history := schema.NewMessages()
		history.AddUser(chatMessage)
		_, err := orch.RunTurnStream(ctx, history, stdoutSink{})
		return err
	}

	fmt.Printf("%s concierge — type a message, or /quit to exit\n", logo)
	history := schema.NewMessages()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			break
		}

		history.AddUser(line)
		answer, err := orch.RunTurnStream(ctx, history, stdoutSink{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			// Drop the failed user turn so the next one starts clean.
			history.Messages = history.Messages[:len(history.Messages)-1]
			continue
		}
		history.AddAssistant(answer, nil)
	}
	return scanner.Err()
}
