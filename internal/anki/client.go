package anki

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cardslicer/cardslicer/internal/logging"
)

// DefaultURL is where the AnkiConnect add-on listens on a local Anki.
const DefaultURL = "http://127.0.0.1:8765"

const connectVersion = 6

// ServiceError means AnkiConnect could not be reached or answered at
// the HTTP level. Always retryable: Anki is probably not running.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("ankiconnect unavailable: %v", e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ValidationError carries an error string AnkiConnect itself reported,
// e.g. a bad note field or an unknown model. Retrying without changing
// the request will not help.
type ValidationError struct {
	Action  string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ankiconnect %s rejected: %s", e.Action, e.Message)
}

// flashcard note with an attached audio clip
type Note struct {
	DeckName string
	Front    string
	Back     string
	Tags     []string
	ClipName string
	Clip     []byte
}

// Client talks the AnkiConnect JSON envelope: one POST per action with
// {action, version, params}, answered by {result, error}.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(baseURL string, logger *logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type requestEnvelope struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type responseEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

func (c *Client) invoke(
	ctx context.Context,
	action string,
	params any,
	out any,
) error {
	body, err := json.Marshal(requestEnvelope{
		Action:  action,
		Version: connectVersion,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("create %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ServiceError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServiceError{
			Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return &ServiceError{Err: fmt.Errorf("malformed response: %w", err)}
	}
	if envelope.Error != nil && *envelope.Error != "" {
		return &ValidationError{Action: action, Message: *envelope.Error}
	}

	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return &ServiceError{Err: fmt.Errorf("malformed result: %w", err)}
		}
	}
	return nil
}

// Ping checks that Anki with the AnkiConnect add-on is running.
func (c *Client) Ping(ctx context.Context) error {
	var version int
	if err := c.invoke(ctx, "version", nil, &version); err != nil {
		return err
	}
	c.logger.Debugw("ankiconnect reachable", "version", version)
	return nil
}

// EnsureDeck creates the deck if it does not exist. AnkiConnect's
// createDeck is itself idempotent.
func (c *Client) EnsureDeck(ctx context.Context, name string) error {
	params := map[string]any{"deck": name}
	return c.invoke(ctx, "createDeck", params, nil)
}

// AddNote creates one Basic note with the clip attached to the back
// field and returns the new note id.
func (c *Client) AddNote(ctx context.Context, note Note) (int64, error) {
	audio := []map[string]any{}
	if len(note.Clip) > 0 {
		audio = append(audio, map[string]any{
			"data":     base64.StdEncoding.EncodeToString(note.Clip),
			"filename": note.ClipName,
			"fields":   []string{"Back"},
		})
	}

	tags := note.Tags
	if tags == nil {
		tags = []string{}
	}

	params := map[string]any{
		"note": map[string]any{
			"deckName":  note.DeckName,
			"modelName": "Basic",
			"fields": map[string]string{
				"Front": note.Front,
				"Back":  note.Back,
			},
			"options": map[string]any{
				"allowDuplicate": false,
			},
			"tags":  tags,
			"audio": audio,
		},
	}

	var noteID int64
	if err := c.invoke(ctx, "addNote", params, &noteID); err != nil {
		return 0, err
	}

	c.logger.Infow("anki note created",
		"deck", note.DeckName,
		"note_id", noteID,
		"clip_bytes", len(note.Clip),
	)
	return noteID, nil
}
