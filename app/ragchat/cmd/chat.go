package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/acahill/ragchat/internal/chat"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Starts an interactive conversation with the answering service. The stored
conversation history is loaded first; every line you type is sent as a message.

Commands inside the session:
  /rag on|off   toggle retrieval augmentation for sent messages
  /history      reload the conversation history from the server
  /logout       log out and end the session
  /quit         end the session`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&config.NoRAG, "no-rag", false, "Disable retrieval augmentation for sent messages")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	c, err := setupClients(ctx)
	if err != nil {
		return err
	}
	defer c.close(ctx)

	if err := c.auth.Restore(ctx); err != nil {
		return err
	}
	if !c.auth.IsAuthenticated() {
		return fmt.Errorf("not logged in; run 'ragchat login' first")
	}
	log.Printf("Chatting as %s", c.auth.CurrentUser().Email)

	conversation := chat.NewConversation(c.api)
	if config.NoRAG {
		conversation.SetUseRAG(false)
	}

	if err := conversation.LoadHistory(ctx); err != nil {
		// Non-fatal: sends do not require a prior successful history load
		log.Printf("Failed to load history: %v", err)
	}
	printMessages(conversation.Messages())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit" || line == "/exit":
			return nil

		case line == "/logout":
			c.auth.Logout(ctx)
			return nil

		case line == "/history":
			if err := conversation.LoadHistory(ctx); err != nil {
				log.Printf("Failed to load history: %v", err)
				continue
			}
			printMessages(conversation.Messages())

		case line == "/rag on":
			conversation.SetUseRAG(true)
			fmt.Println("retrieval augmentation enabled")

		case line == "/rag off":
			conversation.SetUseRAG(false)
			fmt.Println("retrieval augmentation disabled")

		default:
			sendAndPrint(ctx, conversation, line)
		}
	}
	return scanner.Err()
}

// sendAndPrint sends one message and prints the turns the reconciled log
// gained beyond the user's own (echoed) entry.
func sendAndPrint(ctx context.Context, conversation *chat.Conversation, line string) {
	before := len(conversation.Messages())

	if err := conversation.Send(ctx, line, conversation.UseRAG()); err != nil {
		log.Printf("Send failed: %v", err)
		return
	}

	messages := conversation.Messages()
	for i := before; i < len(messages); i++ {
		if messages[i].Role == chat.RoleUser && messages[i].Content == line {
			continue
		}
		printMessage(messages[i])
	}
}

func printMessages(messages []chat.Message) {
	for _, m := range messages {
		printMessage(m)
	}
}

func printMessage(m chat.Message) {
	prefix := "assistant>"
	if m.Role == chat.RoleUser {
		prefix = "you>"
	}
	fmt.Printf("%s %s\n", prefix, m.Content)
}
