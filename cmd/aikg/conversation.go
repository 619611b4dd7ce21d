package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var conversationCmd = &cobra.Command{
	Use:     "conversation",
	Aliases: []string{"conversations", "conv"},
	Short:   "Manage stored conversations",
	Long:    `List, create, inspect, and delete conversations stored in the graph.`,
}

var conversationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's conversations",
	Long: `List a user's conversations, most recently updated first.

Examples:
  aikg conversation list --user alice
  aikg conversation list --user alice --output json`,
	RunE: runConversationList,
}

var conversationCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new conversation",
	Long: `Create a new conversation owned by a user.

Examples:
  aikg conversation create --user alice --title "SQL注入学习"`,
	RunE: runConversationCreate,
}

var conversationMessagesCmd = &cobra.Command{
	Use:   "messages CONVERSATION_ID",
	Short: "Show a conversation transcript",
	Long: `Print the messages of a conversation in chronological order.

Examples:
  aikg conversation messages 0f6b2c1a-77d4-4b3e-9c58-1f2f3a4b5c6d`,
	Args: cobra.ExactArgs(1),
	RunE: runConversationMessages,
}

var conversationDeleteCmd = &cobra.Command{
	Use:   "delete CONVERSATION_ID",
	Short: "Delete a conversation and its messages",
	Long: `Delete a conversation the user owns, including all of its messages.
Deleting a conversation that does not exist or belongs to another user
fails the same way in both cases.

Examples:
  aikg conversation delete 0f6b2c1a-77d4-4b3e-9c58-1f2f3a4b5c6d --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: runConversationDelete,
}

var (
	conversationUser  string
	conversationTitle string
)

func init() {
	conversationListCmd.Flags().StringVar(&conversationUser, "user", "", "Username owning the conversations")
	_ = conversationListCmd.MarkFlagRequired("user")

	conversationCreateCmd.Flags().StringVar(&conversationUser, "user", "", "Username owning the conversation")
	conversationCreateCmd.Flags().StringVar(&conversationTitle, "title", "新对话", "Conversation title")
	_ = conversationCreateCmd.MarkFlagRequired("user")

	conversationDeleteCmd.Flags().StringVar(&conversationUser, "user", "", "Username owning the conversation")
	_ = conversationDeleteCmd.MarkFlagRequired("user")

	conversationCmd.AddCommand(conversationListCmd)
	conversationCmd.AddCommand(conversationCreateCmd)
	conversationCmd.AddCommand(conversationMessagesCmd)
	conversationCmd.AddCommand(conversationDeleteCmd)
}

func runConversationList(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	conversations, err := svc.ListConversations(cmd.Context(), conversationUser)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"user":          conversationUser,
			"conversations": conversations,
			"count":         len(conversations),
		})
	}

	if len(conversations) == 0 {
		cmd.Printf("No conversations found for user: %s\n", conversationUser)
		return nil
	}

	rows := make([][]string, 0, len(conversations))
	for _, c := range conversations {
		rows = append(rows, []string{
			c.ID,
			internal.Truncate(c.Title, 40),
			c.UpdatedAt.Format("2006-01-02 15:04"),
			c.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	return internal.NewTextFormatter(cmd.OutOrStdout()).PrintTable(
		[]string{"ID", "Title", "Updated", "Created"}, rows)
}

func runConversationCreate(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	conv, err := svc.CreateConversation(cmd.Context(), conversationUser, conversationTitle)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(conv)
	}

	return internal.NewTextFormatter(cmd.OutOrStdout()).PrintSuccess(
		"Conversation created: " + conv.ID)
}

func runConversationMessages(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	messages, err := svc.Messages(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"conversation_id": args[0],
			"messages":        messages,
			"count":           len(messages),
		})
	}

	if len(messages) == 0 {
		cmd.Println("Conversation is empty.")
		return nil
	}

	for _, msg := range messages {
		cmd.Printf("[%s] User: %s\n", msg.Timestamp.Format("2006-01-02 15:04"), msg.Question)
		cmd.Printf("Assistant: %s\n", msg.Answer)
		if globalFlags.IsVerbose() {
			cmd.Printf("(mode: %s, knowledge: %d)\n", msg.Mode, len(msg.RelatedKnowledge))
		}
		cmd.Println()
	}

	return nil
}

func runConversationDelete(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	deleted, err := svc.DeleteConversation(cmd.Context(), args[0], conversationUser)
	if err != nil {
		return err
	}
	if !deleted {
		return internal.NewCLIError(internal.ExitNotFound,
			"conversation not found or not owned by "+conversationUser)
	}

	return internal.NewTextFormatter(cmd.OutOrStdout()).PrintSuccess(
		"Conversation deleted: " + args[0])
}
