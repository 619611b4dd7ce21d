package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/answer"
	"github.com/LeonFTWANG/AIKG/internal/service"
)

var chatCmd = &cobra.Command{
	Use:   "chat [QUESTION]",
	Short: "Ask the security knowledge assistant",
	Long: `Ask a security question and get an answer grounded in the knowledge
graph. With a question argument the command answers once and exits;
without arguments it starts an interactive session.

History-aware answering needs both --user and --conversation, so the
assistant can read the stored history and append the new exchange.
Without them every question stands alone and nothing is persisted.

The assistant answers a newly raised topic in a structured layout and
switches to free text once the conversation has covered that topic.

Examples:
  # One-shot question
  aikg chat "什么是SQL注入"

  # Continue a stored conversation
  aikg chat --user alice --conversation 0f6b2c1a "如何防御"

  # Interactive session
  aikg chat --user alice`,
	Args: cobra.ArbitraryArgs,
	RunE: runChat,
}

var (
	chatUser         string
	chatConversation string
)

func init() {
	chatCmd.Flags().StringVar(&chatUser, "user", "", "Username owning the conversation")
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "Conversation id to read and extend")
}

func runChat(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	if len(args) > 0 {
		return askOnce(cmd, svc, strings.Join(args, " "))
	}

	return chatLoop(cmd, svc)
}

// askOnce answers a single question and prints the result.
func askOnce(cmd *cobra.Command, svc *service.Service, question string) error {
	result, err := svc.Answer(cmd.Context(), answer.Request{
		Question:       question,
		ConversationID: chatConversation,
		UserID:         chatUser,
	})
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(result)
	}

	displayAnswer(cmd, result)
	return nil
}

// displayAnswer prints the answer text followed by the knowledge it used.
func displayAnswer(cmd *cobra.Command, result answer.Result) {
	cmd.Println(result.Answer)

	if len(result.Supporting) > 0 {
		cmd.Printf("\nRelated knowledge (%d):\n", len(result.Supporting))
		for i, n := range result.Supporting {
			line := fmt.Sprintf("  %d. 【%s】%s", i+1, n.Type, n.DisplayName())
			if n.Severity != "" {
				line += " [" + internal.FormatSeverity(n.Severity) + "]"
			}
			cmd.Println(line)
		}
	}

	if globalFlags.IsVerbose() {
		cmd.Printf("\nMode: %s  Context used: %t\n", result.Mode, result.ContextUsed)
	}
}

// chatLoop runs the interactive session until /quit or EOF.
func chatLoop(cmd *cobra.Command, svc *service.Service) error {
	cmd.Println("AIKG Interactive Chat")
	cmd.Println("Type /help for commands, /quit to exit")
	if chatConversation == "" {
		cmd.Println("Note: no --conversation set, questions stand alone and are not saved")
	}
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print(chatPrompt())

		input, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				cmd.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handleChatCommand(cmd, svc, input) {
				return nil
			}
			continue
		}

		if err := askOnce(cmd, svc, input); err != nil {
			if cmd.Context().Err() != nil {
				cmd.Println("\nGoodbye!")
				return nil
			}
			cmd.PrintErrf("Error: %v\n", err)
		}
		cmd.Println()
	}
}

// chatPrompt returns the input prompt, naming the active conversation.
func chatPrompt() string {
	if chatConversation != "" {
		short := chatConversation
		if len(short) > 8 {
			short = short[:8]
		}
		return fmt.Sprintf("aikg:%s> ", short)
	}
	return "aikg> "
}

// handleChatCommand processes slash commands.
// Returns true if the session should exit.
func handleChatCommand(cmd *cobra.Command, svc *service.Service, input string) bool {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])

	switch command {
	case "/quit", "/exit":
		cmd.Println("Goodbye!")
		return true

	case "/help":
		printChatHelp(cmd)

	case "/new":
		title := "新对话"
		if len(parts) > 1 {
			title = strings.Join(parts[1:], " ")
		}
		startConversation(cmd, svc, title)

	case "/history":
		showHistory(cmd, svc)

	default:
		cmd.PrintErrf("Unknown command: %s (type /help for available commands)\n", command)
	}

	return false
}

// startConversation creates a fresh conversation and makes it active.
func startConversation(cmd *cobra.Command, svc *service.Service, title string) {
	if chatUser == "" {
		cmd.PrintErrln("Set --user to create conversations")
		return
	}

	conv, err := svc.CreateConversation(cmd.Context(), chatUser, title)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}

	chatConversation = conv.ID
	cmd.Printf("Conversation created: %s (%s)\n", conv.ID, conv.Title)
}

// showHistory prints the stored transcript of the active conversation.
func showHistory(cmd *cobra.Command, svc *service.Service) {
	if chatConversation == "" {
		cmd.PrintErrln("No active conversation. Use /new or --conversation.")
		return
	}

	messages, err := svc.Messages(cmd.Context(), chatConversation)
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}

	if len(messages) == 0 {
		cmd.Println("Conversation is empty.")
		return
	}

	cmd.Println()
	for _, msg := range messages {
		cmd.Printf("User: %s\n", msg.Question)
		cmd.Printf("Assistant: %s\n\n", internal.Truncate(msg.Answer, 200))
	}
}

// printChatHelp displays the slash command reference.
func printChatHelp(cmd *cobra.Command) {
	cmd.Println("\nAvailable commands:")
	cmd.Println("  /help           - Show this help message")
	cmd.Println("  /quit, /exit    - Exit the chat")
	cmd.Println("  /new [title]    - Start a new stored conversation (needs --user)")
	cmd.Println("  /history        - Show the active conversation transcript")
	cmd.Println()
}
