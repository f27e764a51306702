package anki

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardslicer/cardslicer/internal/export"
	"github.com/cardslicer/cardslicer/internal/logging"
)

type recordedRequest struct {
	Action  string         `json:"action"`
	Version int            `json:"version"`
	Params  map[string]any `json:"params"`
}

// ankiStub answers the AnkiConnect envelope and records every request.
func ankiStub(
	t *testing.T,
	respond func(req recordedRequest) (result any, errMsg string),
) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			var req recordedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("malformed request body: %v", err)
			}
			requests = append(requests, req)

			result, errMsg := respond(req)
			resp := map[string]any{"result": result, "error": nil}
			if errMsg != "" {
				resp["error"] = errMsg
			}
			_ = json.NewEncoder(w).Encode(resp)
		}))
	t.Cleanup(server.Close)

	return server, &requests
}

func TestPing(t *testing.T) {
	server, requests := ankiStub(t,
		func(req recordedRequest) (any, string) {
			return 6, ""
		})

	client := NewClient(server.URL, logging.NewNop())
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping error: %v", err)
	}

	if len(*requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*requests))
	}
	req := (*requests)[0]
	if req.Action != "version" || req.Version != 6 {
		t.Errorf("request = %+v", req)
	}
}

func TestEnsureDeck(t *testing.T) {
	server, requests := ankiStub(t,
		func(req recordedRequest) (any, string) {
			return 1000, ""
		})

	client := NewClient(server.URL, logging.NewNop())
	if err := client.EnsureDeck(context.Background(), "Spanish"); err != nil {
		t.Fatalf("EnsureDeck error: %v", err)
	}

	req := (*requests)[0]
	if req.Action != "createDeck" {
		t.Errorf("action = %q", req.Action)
	}
	if req.Params["deck"] != "Spanish" {
		t.Errorf("params = %+v", req.Params)
	}
}

func TestAddNote(t *testing.T) {
	server, requests := ankiStub(t,
		func(req recordedRequest) (any, string) {
			return 1496198395707, ""
		})

	client := NewClient(server.URL, logging.NewNop())
	clip := []byte("fake mp3")
	noteID, err := client.AddNote(context.Background(), Note{
		DeckName: "Spanish",
		Front:    "Hola",
		Back:     "Hello",
		Tags:     []string{"listening"},
		ClipName: "ep1_0001_1_0.mp3",
		Clip:     clip,
	})
	if err != nil {
		t.Fatalf("AddNote error: %v", err)
	}
	if noteID != 1496198395707 {
		t.Errorf("note id = %d", noteID)
	}

	req := (*requests)[0]
	if req.Action != "addNote" {
		t.Fatalf("action = %q", req.Action)
	}
	note := req.Params["note"].(map[string]any)
	if note["deckName"] != "Spanish" || note["modelName"] != "Basic" {
		t.Errorf("note = %+v", note)
	}
	fields := note["fields"].(map[string]any)
	if fields["Front"] != "Hola" || fields["Back"] != "Hello" {
		t.Errorf("fields = %+v", fields)
	}
	audio := note["audio"].([]any)
	if len(audio) != 1 {
		t.Fatalf("audio attachments = %d", len(audio))
	}
	attachment := audio[0].(map[string]any)
	if attachment["filename"] != "ep1_0001_1_0.mp3" {
		t.Errorf("attachment = %+v", attachment)
	}
	if attachment["data"] != base64.StdEncoding.EncodeToString(clip) {
		t.Error("clip should be base64 encoded")
	}
}

func TestValidationErrorFromEnvelope(t *testing.T) {
	server, _ := ankiStub(t,
		func(req recordedRequest) (any, string) {
			return nil, "cannot create note because it is a duplicate"
		})

	client := NewClient(server.URL, logging.NewNop())
	_, err := client.AddNote(context.Background(), Note{
		DeckName: "Spanish",
		Front:    "Hola",
		Back:     "Hello",
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if validationErr.Action != "addNote" {
		t.Errorf("action = %q", validationErr.Action)
	}
	if !strings.Contains(validationErr.Error(), "duplicate") {
		t.Errorf("message lost: %v", validationErr)
	}
}

func TestServiceErrorOnHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, logging.NewNop())
	err := client.Ping(context.Background())

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestServiceErrorWhenUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := NewClient(server.URL, logging.NewNop())
	err := client.Ping(context.Background())

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestServiceErrorOnMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, logging.NewNop())
	err := client.Ping(context.Background())

	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected *ServiceError, got %T: %v", err, err)
	}
}

func TestCreateCardEnsuresDeckFirst(t *testing.T) {
	server, requests := ankiStub(t,
		func(req recordedRequest) (any, string) {
			if req.Action == "createDeck" {
				return 7, ""
			}
			return 42, ""
		})

	client := NewClient(server.URL, logging.NewNop())
	cardID, err := client.CreateCard(context.Background(), &export.Request{
		DeckName:        "Spanish",
		OriginalText:    "Hola\nmundo",
		TranslationText: "Hello\nworld",
		SourceLabel:     "ep1",
		ClipName:        "clip.mp3",
		Clip:            []byte("x"),
	})
	if err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}
	if cardID != "42" {
		t.Errorf("card id = %q", cardID)
	}

	if len(*requests) != 2 {
		t.Fatalf("expected createDeck then addNote, got %d requests",
			len(*requests))
	}
	if (*requests)[0].Action != "createDeck" ||
		(*requests)[1].Action != "addNote" {
		t.Errorf("actions = %q, %q",
			(*requests)[0].Action, (*requests)[1].Action)
	}

	note := (*requests)[1].Params["note"].(map[string]any)
	fields := note["fields"].(map[string]any)
	if fields["Front"] != "Hola<br>mundo" {
		t.Errorf("front = %q", fields["Front"])
	}
	back := fields["Back"].(string)
	if !strings.Contains(back, "Hello<br>world") ||
		!strings.Contains(back, "Source: ep1") {
		t.Errorf("back = %q", back)
	}
}

func TestCreateCardEmptyTranslationPlaceholder(t *testing.T) {
	server, requests := ankiStub(t,
		func(req recordedRequest) (any, string) {
			return 1, ""
		})

	client := NewClient(server.URL, logging.NewNop())
	if _, err := client.CreateCard(context.Background(), &export.Request{
		DeckName:     "Spanish",
		OriginalText: "Hola",
	}); err != nil {
		t.Fatalf("CreateCard error: %v", err)
	}

	note := (*requests)[1].Params["note"].(map[string]any)
	fields := note["fields"].(map[string]any)
	if !strings.Contains(fields["Back"].(string), "(no translation)") {
		t.Errorf("back = %q", fields["Back"])
	}
}
