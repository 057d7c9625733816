package prompts

import (
	"fmt"
	"time"
)

// --- Config Messages ---

func ConfigLoadFailed(err error) string {
	return fmt.Sprintf("Failed to load config: %v. Using default values.", err)
}

func NoConfigFound() string {
	return "No config found. Creating a new one."
}

func ConfigSaved(path string) string {
	return fmt.Sprintf("Config saved to %s", path)
}

func EnterBackendURL(defaultURL string) string {
	return fmt.Sprintf("Enter the generation backend URL (default: %s): ", defaultURL)
}

func EnterProvider(defaultProvider string) string {
	return fmt.Sprintf("Enter your preferred provider (e.g., http, ollama) (default: %s): ", defaultProvider)
}

func EnterModel(defaultModel string) string {
	return fmt.Sprintf("Enter your preferred model (e.g., %s): ", defaultModel)
}

func EnterAPIKey(provider string) string {
	return fmt.Sprintf("Enter your API key for %s (input hidden): ", provider)
}

func APIKeySaved(provider string) string {
	return fmt.Sprintf("API key for %s saved.", provider)
}

// --- Chat Flow Messages ---

func InstructionsRequired() string {
	return "A message is required. Describe the change you want to make to the site."
}

func ProcessingRequest() string {
	return "Thinking..."
}

func RequestInFlight() string {
	return "A request is already in progress. Wait for it to finish before sending another."
}

func RequestFinished(duration time.Duration) string {
	return fmt.Sprintf("Response received in %s", duration.Round(time.Millisecond))
}

// --- Proposal / Approval Messages ---

func ProposalStaged(kind string) string {
	return fmt.Sprintf("Staged a %s change for review. Approve to apply it, reject to discard.", kind)
}

func ProposalReplaced() string {
	return "A newer proposal replaced the one that was pending."
}

func ProposalApproved() string {
	return "Change applied."
}

func ProposalDiscarded() string {
	return "Change discarded. Your page is unchanged."
}

func NothingProposed() string {
	return "There is no pending change to act on."
}

func FullReplacementWarning(action string) string {
	return fmt.Sprintf("You asked for a %s change, but the response replaces the whole page. Review carefully before approving.", action)
}

func SnippetAppendedWarning() string {
	return "The page has no </body> marker; the new section was appended at the end."
}

func BuilderActionsPending(count int) string {
	return fmt.Sprintf("%d builder action(s) await confirmation.", count)
}

// --- Backend Messages ---

func BackendRateLimited() string {
	return "The service is receiving too many requests right now. Wait a moment and try again."
}

func BackendQuotaExceeded() string {
	return "Your plan's usage limit has been reached. Upgrade or wait for the quota to reset."
}

func BackendEmptyResponse() string {
	return "The model returned an empty response. Try rephrasing your request."
}

func RetryingTransport(attempt, maxAttempts int, delay time.Duration) string {
	return fmt.Sprintf("Connection problem, retrying (%d/%d) in %s...", attempt, maxAttempts, delay)
}

func BackendUnavailable(err error) string {
	return fmt.Sprintf("Could not reach the generation service: %v", err)
}

func PayloadTruncated() string {
	return "Conversation context was trimmed to fit the request size limit."
}

// --- Preview Messages ---

func PreviewListening(addr string) string {
	return fmt.Sprintf("Preview available at http://%s", addr)
}

func SelectionCaptured(selector string) string {
	return fmt.Sprintf("Selected %s. Your next message applies to it.", selector)
}

func SelectionCleared() string {
	return "Selection cleared."
}

func SelectionStale(selector string) string {
	return fmt.Sprintf("The element %s no longer exists in the page. Select it again.", selector)
}

func WatchEstablished(path string) string {
	return fmt.Sprintf("Watching %s for changes...", path)
}

// --- History Messages ---

func RevisionRecorded(id, action string) string {
	return fmt.Sprintf("Recorded revision %s (%s).", id, action)
}

func RollbackComplete(id string) string {
	return fmt.Sprintf("Rolled back to revision %s.", id)
}

func NoSuchRevision(id string) string {
	return fmt.Sprintf("No revision %s in the history log.", id)
}

func HistoryEmpty() string {
	return "No committed revisions yet."
}

// --- Workspace Messages ---

func TemplatesDiscovered(count int, dir string) string {
	return fmt.Sprintf("Found %d template(s) under %s.", count, dir)
}

func NoTemplatesFound(dir string) string {
	return fmt.Sprintf("No HTML templates found under %s.", dir)
}
