package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	analyticsapp "coldcall-sim/backend/internal/features/analytics/application"
	"coldcall-sim/backend/internal/features/conversation/application"
	"coldcall-sim/backend/internal/features/conversation/domain"
	personadomain "coldcall-sim/backend/internal/features/persona/domain"
	"coldcall-sim/backend/internal/retry"
)

var (
	chatPersona personadomain.PersonaConfig
	chatPrice   int64
	chatAPIKey  string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Practice a call in the terminal",
	Long: `Start a conversation with the configured home-owner persona. Each line you type is
sent as the agent; the owner's reply streams back as it is generated.

  /analytics  score the call so far
  /new        start a new conversation with the same persona
  /quit       exit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}

		persona := chatPersona
		if cmd.Flags().Changed("price") {
			persona.AskingPrice = personadomain.Price(chatPrice)
		}
		req := &domain.StartRequest{Persona: persona, APIKey: chatAPIKey}
		return runChat(cmd.Context(), newConversationService(cfg, logger), req, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	flags := chatCmd.Flags()
	flags.StringVar(&chatPersona.OwnerName, "owner-name", "", "home-owner's name")
	flags.StringVar(&chatPersona.Nature, "nature", "", "owner's nature, e.g. \"Reserved or Private\"")
	flags.StringVar(&chatPersona.Description, "description", "", "owner's attitude towards the sale")
	flags.StringVar(&chatPersona.Difficulty, "difficulty", "", "how hard the owner negotiates, e.g. \"Tough\"")
	flags.StringVar(&chatPersona.PropertyDescription, "property", "", "description of the property")
	flags.Int64Var(&chatPrice, "price", 0, "asking price in USD")
	flags.StringVar(&chatPersona.PriceTier, "price-tier", "", "price relative to the market, e.g. \"Above Average\"")
	flags.StringVar(&chatAPIKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
}

// runChat drives one terminal session until /quit or end of input.
func runChat(ctx context.Context, svc application.ConversationService, req *domain.StartRequest, in io.Reader, out io.Writer) error {
	session, err := svc.Start(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Delete(session.ID) }()

	owner := session.Persona.OwnerName
	fmt.Fprintf(out, "Calling %s. Type /analytics to score the call, /new to start over, /quit to exit.\n", owner)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Agent: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit":
			return nil
		case "/new":
			if _, err := svc.Reset(session.ID); err != nil {
				return err
			}
			fmt.Fprintln(out, "New conversation started.")
		case "/analytics":
			analysed, err := svc.RequestAnalytics(ctx, session.ID)
			if err != nil {
				fmt.Fprintln(out, describe(err))
				continue
			}
			fmt.Fprint(out, analyticsapp.FormatReport(analysed.Analytics))
			fmt.Fprintln(out, "Type /new to start another conversation.")
		default:
			fmt.Fprintf(out, "%s: ", owner)
			_, _, err := svc.SendMessage(ctx, session.ID, line, func(fragment string) {
				fmt.Fprint(out, fragment)
			})
			fmt.Fprintln(out)
			if err != nil {
				fmt.Fprintln(out, describe(err))
			}
		}
	}
}

// describe turns a recoverable error into the line shown to the agent.
func describe(err error) string {
	var transient *retry.TransientFailure
	if errors.As(err, &transient) {
		return fmt.Sprintf("Error: the language model could not be reached after %d attempts. Please try again.", transient.Attempts)
	}
	return "Error: " + err.Error()
}
