package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alantheprice/pagewright/pkg/actions"
	"github.com/alantheprice/pagewright/pkg/approval"
	"github.com/alantheprice/pagewright/pkg/backend"
	"github.com/alantheprice/pagewright/pkg/classify"
	"github.com/alantheprice/pagewright/pkg/config"
	"github.com/alantheprice/pagewright/pkg/prompts"
	"github.com/alantheprice/pagewright/pkg/session"
	"github.com/alantheprice/pagewright/pkg/ui"
	"github.com/alantheprice/pagewright/pkg/utils"
)

var (
	chatFile         string
	chatOut          string
	chatConversation string
	chatMode         string
	chatAction       string
)

var chatCmd = &cobra.Command{
	Use:   "chat [instruction]",
	Short: "Interactive editing session against a template",
	Long: `Chat drives the full pipeline: your instruction goes to the generation
backend, the response is parsed into typed operations, classified against the
current document, and staged for approval. Nothing touches the document until
you accept.

Inside the session:
  /accept          commit the staged change
  /reject          discard the staged change
  /diff            show the staged change against the current document
  /edit            hand-edit the staged content before committing
  /actions         confirm pending builder actions
  /select <sel>    target an element for the next instruction
  /clear           clear the element target
  /save [path]     write the current document
  /quit            end the session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrInit(skipPrompt)
		if err != nil {
			return err
		}

		s, err := newSession(cfg, pickTemplate(chatFile), chatConversation)
		if err != nil {
			return err
		}
		defer s.Reset()

		// One-shot form: a single instruction on the command line, commit
		// without the interactive gate only if explicitly skipping prompts.
		if len(args) > 0 {
			return runOneShot(s, strings.Join(args, " "))
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) && !skipPrompt {
			return errors.New("chat needs a terminal; pass an instruction as an argument for one-shot use")
		}

		return runChatLoop(s)
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatFile, "file", "f", "", "template file to edit")
	chatCmd.Flags().StringVarP(&chatOut, "out", "o", "", "write the document here on /save and at session end")
	chatCmd.Flags().StringVar(&chatConversation, "conversation", "", "conversation id to resume")
	chatCmd.Flags().StringVar(&chatMode, "mode", backend.ModeCode, "backend mode: code, design, review or debug")
	chatCmd.Flags().StringVar(&chatAction, "action", "", "override the inferred change type (add, remove, modify, restyle, suggest, full-control)")
}

// runOneShot sends one instruction and, when something was staged, asks for
// confirmation before committing (or commits outright with --skip-prompt).
func runOneShot(s *session.Session, instruction string) error {
	logger := utils.GetLogger(skipPrompt)

	result, err := sendTurn(s, instruction)
	if err != nil {
		return err
	}
	if result == nil || s.Gate().State() != approval.StateProposed {
		return nil
	}

	for _, w := range result.Warnings {
		ui.Out().Printf("Warning: %s\n", w)
	}
	if !logger.AskForConfirmation("Apply this change?", true) {
		if err := s.Reject(); err == nil {
			ui.Out().Print(prompts.ProposalDiscarded() + "\n")
		}
		return nil
	}

	if _, err := s.Approve(); err != nil {
		return err
	}
	ui.Out().Print(prompts.ProposalApproved() + "\n")
	return saveDocument(s, chatOut)
}

// runChatLoop is the interactive REPL.
func runChatLoop(s *session.Session) error {
	reader := bufio.NewReader(os.Stdin)
	ui.Out().Printf("pagewright chat (conversation %s). Type /quit to end.\n", s.ID)

	for {
		ui.Out().Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleChatCommand(s, reader, line); quit {
				break
			}
			continue
		}

		if _, err := sendTurn(s, line); err != nil {
			ui.Out().Printf("%s\n", userFacingSendError(err))
		}
	}

	if chatOut != "" {
		return saveDocument(s, chatOut)
	}
	return nil
}

// sendTurn runs one instruction through the session and prints the outcome.
func sendTurn(s *session.Session, instruction string) (*session.TurnResult, error) {
	ui.Out().Print(prompts.ProcessingRequest() + "\n")
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.Send(ctx, instruction, session.SendOptions{
		Mode:   chatMode,
		Action: classify.TemplateAction(chatAction),
	})
	if err != nil {
		return nil, err
	}
	ui.Out().Print(prompts.RequestFinished(time.Since(started)) + "\n")

	if result.Truncated {
		ui.Out().Print(prompts.PayloadTruncated() + "\n")
	}
	if result.Reply != "" {
		ui.Out().Printf("\n%s\n\n", result.Reply)
	}
	for _, suggestion := range result.Suggestions {
		ui.Out().Printf("  · %s\n", suggestion)
	}

	if result.Proposal != nil {
		if result.Evicted {
			ui.Out().Print(prompts.ProposalReplaced() + "\n")
		}
		ui.Out().Print(prompts.ProposalStaged(string(result.Proposal.Kind)) + "\n")
		for _, w := range result.Warnings {
			ui.Out().Printf("Warning: %s\n", w)
		}
	}
	if result.ActionsPending > 0 {
		ui.Out().Print(prompts.BuilderActionsPending(result.ActionsPending) + "\n")
		for _, a := range s.PendingActions() {
			ui.Out().Printf("  · %s\n", actions.Describe(a))
		}
	}
	return result, nil
}

// handleChatCommand executes one slash command; true means quit.
func handleChatCommand(s *session.Session, reader *bufio.Reader, line string) bool {
	parts := strings.SplitN(line, " ", 2)
	arg := ""
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true

	case "/accept":
		if _, err := s.Approve(); err != nil {
			ui.Out().Print(prompts.NothingProposed() + "\n")
			return false
		}
		ui.Out().Print(prompts.ProposalApproved() + "\n")

	case "/reject":
		if err := s.Reject(); err != nil {
			ui.Out().Print(prompts.NothingProposed() + "\n")
			return false
		}
		ui.Out().Print(prompts.ProposalDiscarded() + "\n")

	case "/diff":
		pending := s.Gate().Pending()
		if pending == nil {
			ui.Out().Print(prompts.NothingProposed() + "\n")
			return false
		}
		ui.Out().Print(approval.DiffPreview(s.Document(), pending.ProposedContent) + "\n")

	case "/edit":
		if s.Gate().Pending() == nil {
			ui.Out().Print(prompts.NothingProposed() + "\n")
			return false
		}
		ui.Out().Print("Enter replacement content, end with a single '.' line:\n")
		content := readUntilDot(reader)
		if err := s.EditProposal(content); err == nil {
			ui.Out().Print("Proposal updated.\n")
		}

	case "/actions":
		applied, err := s.ConfirmActions(context.Background())
		if err != nil {
			ui.Out().Printf("Action execution failed: %v\n", err)
			return false
		}
		ui.Out().Printf("Applied: %s\n", strings.Join(applied, ", "))

	case "/select":
		if arg == "" {
			ui.Out().Print("Usage: /select <css selector>\n")
			return false
		}
		if el, ok := s.SelectElement(arg); ok {
			ui.Out().Print(prompts.SelectionCaptured(el.Selector) + "\n")
		} else {
			ui.Out().Print(prompts.SelectionStale(arg) + "\n")
		}

	case "/clear":
		s.ClearSelection()
		ui.Out().Print(prompts.SelectionCleared() + "\n")

	case "/save":
		path := arg
		if path == "" {
			path = chatOut
		}
		if err := saveDocument(s, path); err != nil {
			ui.Out().Printf("Save failed: %v\n", err)
		}

	default:
		ui.Out().Printf("Unknown command %s\n", parts[0])
	}
	return false
}

func readUntilDot(reader *bufio.Reader) string {
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, strings.TrimRight(line, "\n"))
	}
	return strings.Join(lines, "\n")
}

func saveDocument(s *session.Session, path string) error {
	if path == "" {
		if chatFile != "" {
			path = chatFile
		} else {
			return errors.New("no output path; pass --out or /save <path>")
		}
	}
	if err := os.WriteFile(path, []byte(s.Document()), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	ui.Out().Printf("Saved %s\n", path)
	return nil
}

// userFacingSendError maps the backend error taxonomy to the catalog strings.
func userFacingSendError(err error) string {
	switch {
	case errors.Is(err, backend.ErrRateLimited):
		return prompts.BackendRateLimited()
	case errors.Is(err, backend.ErrPaymentRequired):
		return prompts.BackendQuotaExceeded()
	case errors.Is(err, backend.ErrEmptyResponse):
		return prompts.BackendEmptyResponse()
	case errors.Is(err, session.ErrRequestInFlight):
		return prompts.RequestInFlight()
	default:
		return prompts.BackendUnavailable(err)
	}
}
