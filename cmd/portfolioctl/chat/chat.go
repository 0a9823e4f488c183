package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/logger"
	"portfolio-backend/internal/metrics"
	"portfolio-backend/internal/models"
	"portfolio-backend/internal/services"
)

const chatLongDesc string = `Talk to the portfolio assistant from the terminal.

Each line is sent through the same pipeline as POST /api/v1/chat, with the
conversation so far as history. Provider settings come from the
ANTHROPIC_* environment variables unless overridden by flags.
Type "exit" or send EOF to quit.

Examples:
  portfolioctl chat
  portfolioctl chat --model claude-3-5-haiku-latest --max-tokens 256`

const chatShortDesc string = "Chat with the portfolio assistant"

type chatCommander struct {
	apiURL           string
	model            string
	maxTokens        int
	timeout          time.Duration
	systemPromptFile string
	debug            bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVar(&cmder.apiURL, "api-url", "", "Messages API URL (defaults to ANTHROPIC_API_URL)")
	cmd.Flags().StringVarP(&cmder.model, "model", "m", "", "Model id (defaults to ANTHROPIC_MODEL)")
	cmd.Flags().IntVar(&cmder.maxTokens, "max-tokens", 0, "Reply token limit (defaults to ANTHROPIC_MAX_TOKENS or 1024)")
	cmd.Flags().DurationVar(&cmder.timeout, "timeout", 30*time.Second, "Provider call timeout")
	cmd.Flags().StringVar(&cmder.systemPromptFile, "system-prompt-file", "", "Persona file (defaults to SYSTEM_PROMPT_FILE or the built-in persona)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Log provider calls")

	return cmd
}

func (c *chatCommander) resolve() error {
	if c.apiURL == "" {
		c.apiURL = os.Getenv("ANTHROPIC_API_URL")
	}
	if c.model == "" {
		c.model = os.Getenv("ANTHROPIC_MODEL")
	}
	if c.maxTokens == 0 {
		c.maxTokens = 1024
		if v := os.Getenv("ANTHROPIC_MAX_TOKENS"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid ANTHROPIC_MAX_TOKENS %q: %w", v, err)
			}
			c.maxTokens = n
		}
	}
	if c.systemPromptFile == "" {
		c.systemPromptFile = os.Getenv("SYSTEM_PROMPT_FILE")
	}
	return nil
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	if err := c.resolve(); err != nil {
		return err
	}

	systemPrompt, err := config.LoadSystemPrompt(c.systemPromptFile)
	if err != nil {
		return err
	}

	client, err := services.NewAnthropicClient(services.AnthropicConfig{
		APIURL:  c.apiURL,
		APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		Timeout: c.timeout,
	})
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if c.debug {
		log = logger.New(true)
	}

	svc, err := services.NewChatService(services.ChatConfig{
		Model:        c.model,
		MaxTokens:    c.maxTokens,
		SystemPrompt: systemPrompt,
	}, client, metrics.New(), log)
	if err != nil {
		return err
	}

	return converse(cmd, svc, c.model)
}

type chatter interface {
	Chat(ctx context.Context, req models.ChatRequest) models.ChatResult
}

// converse runs the read-send-print loop. Only successful turns are kept in
// the history sent with the next message.
func converse(cmd *cobra.Command, svc chatter, model string) error {
	out := cmd.OutOrStdout()
	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(out, "Using model: %s\n", boldCyan(model))
	fmt.Fprintln(out, "Type your message and press Enter. Type 'exit' to quit.")

	var history []models.Turn
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		result := svc.Chat(cmd.Context(), models.ChatRequest{Message: input, History: history})
		if !result.Success {
			fmt.Fprintln(out, red(result.Error))
			continue
		}

		fmt.Fprintf(out, "%s %s\n", boldCyan("Assistant:"), result.Message)
		history = append(history,
			models.Turn{Role: models.RoleUser, Content: input},
			models.Turn{Role: models.RoleAssistant, Content: result.Message},
		)
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("could not read input: %w", err)
	}
	return nil
}
