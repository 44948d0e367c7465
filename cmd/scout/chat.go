package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbukum/scoutkit/provider"
)

// newChatCmd creates the "chat" command: send one prompt to a provider
// and print the response, buffered or streamed.
func newChatCmd(configFile *string) *cobra.Command {
	var (
		providerName string
		model        string
		stream       bool
		optimizer    string
	)

	cmd := &cobra.Command{
		Use:   "chat [prompt...]",
		Short: "Send a prompt to a provider and print the response",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			return runChat(cfg, providerName, model, strings.Join(args, " "), stream, optimizer)
		},
	}

	cmd.Flags().StringVarP(&providerName, "provider", "p", "scira", "provider name (see 'scout providers')")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model name (provider default when empty)")
	cmd.Flags().BoolVar(&stream, "stream", false, "print chunks as they arrive")
	cmd.Flags().StringVar(&optimizer, "optimizer", "", "prompt optimizer to apply")
	return cmd
}

func runChat(cfg *appConfig, providerName, model, prompt string, stream bool, optimizer string) error {
	p, err := provider.Open(providerName, settingsFor(cfg, providerName, model))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var opts []provider.AskOption
	if optimizer != "" {
		opts = append(opts, provider.WithOptimizer(optimizer))
	}

	if !stream {
		text, err := p.Ask(ctx, prompt, opts...)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}

	it, err := p.Stream(ctx, prompt, opts...)
	if err != nil {
		return err
	}
	defer it.Close()

	for {
		chunk, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		// Reasoning goes to stderr so piped output stays clean.
		if chunk.Reasoning != "" {
			fmt.Fprint(os.Stderr, chunk.Reasoning)
		}
		fmt.Print(chunk.Text)
	}
	fmt.Println()
	return nil
}
